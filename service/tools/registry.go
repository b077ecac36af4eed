package tools

import (
	"aintranet-backend/model"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
)

// Caller 工具执行时的用户身份
type Caller struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"nombre_completo"`
	Role     string `json:"rol"`
}

// Is 用户角色是否属于 roles 之一
func (c Caller) Is(roles ...string) bool {
	return slices.Contains(roles, c.Role)
}

type callerKey struct{}

// WithCaller 把调用者写入 context，供 MCP 等非 gin 入口使用
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}

func (c Caller) displayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return "Usuario"
}

type handlerFunc func(ctx context.Context, caller Caller, args json.RawMessage) Result

// Operation 一个可被模型调用的门户操作
type Operation struct {
	Name        string
	Description string
	Parameters  Schema
	// 为空表示所有角色可用
	Roles []string

	denied  string
	handler handlerFunc
}

func (o Operation) AllowedFor(role string) bool {
	return len(o.Roles) == 0 || slices.Contains(o.Roles, role)
}

// typed 把原始 JSON 参数解码为具体的参数结构体
func typed[T any](fn func(ctx context.Context, caller Caller, args T) Result) handlerFunc {
	return func(ctx context.Context, caller Caller, raw json.RawMessage) Result {
		var args T
		if err := json.Unmarshal(raw, &args); err != nil {
			return Failuref("Argumentos inválidos: %v", err)
		}
		return fn(ctx, caller, args)
	}
}

type Registry struct {
	repo    Repository
	reports ReportCapturer

	operations []Operation
	index      map[string]int
}

type Option func(*Registry)

func WithReportCapturer(c ReportCapturer) Option {
	return func(r *Registry) {
		r.reports = c
	}
}

func NewRegistry(repo Repository, opts ...Option) *Registry {
	r := &Registry{
		repo:  repo,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.registerQueries()
	r.registerActions()
	r.registerVacationAdmin()
	r.registerTicketAdmin()
	r.registerAdmin()
	r.registerCollections()
	r.registerReports()
	return r
}

func (r *Registry) register(op Operation) {
	if _, ok := r.index[op.Name]; ok {
		panic(fmt.Sprintf("tools: duplicate operation %q", op.Name))
	}
	r.index[op.Name] = len(r.operations)
	r.operations = append(r.operations, op)
}

// Operations 全部已注册的操作
func (r *Registry) Operations() []Operation {
	return slices.Clone(r.operations)
}

// ListAvailableOperations 按固定顺序返回角色可用的操作
func (r *Registry) ListAvailableOperations(role string) []Operation {
	var ops []Operation
	for _, op := range r.operations {
		if op.AllowedFor(role) {
			ops = append(ops, op)
		}
	}
	return ops
}

func (r *Registry) Names(role string) []string {
	var names []string
	for _, op := range r.ListAvailableOperations(role) {
		names = append(names, op.Name)
	}
	return names
}

func (r *Registry) Lookup(name string) (Operation, bool) {
	i, ok := r.index[name]
	if !ok {
		return Operation{}, false
	}
	return r.operations[i], true
}

// Execute 执行指定操作，任何失败都转换为 Result，不返回 error
func (r *Registry) Execute(ctx context.Context, caller Caller, name string, rawArgs json.RawMessage) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Tool panicked",
				"tool_name", name,
				"panic", p,
				"stack", string(debug.Stack()))
			result = Failuref("Error interno al ejecutar \"%s\"", name)
		}
	}()

	op, ok := r.Lookup(name)
	if !ok {
		return Failuref("Herramienta \"%s\" no encontrada", name)
	}
	if !op.AllowedFor(caller.Role) {
		return Failure(op.denied)
	}

	args, err := op.Parameters.normalize(rawArgs)
	if err != nil {
		return Failure(err.Error())
	}

	return op.handler(ctx, caller, args)
}

func dataError(action string, err error) Result {
	slog.Error("Tool data access failed", "action", action, "err", err)
	return Failuref("Error al %s: %v", action, err)
}

var (
	rolesHR         = []string{model.RoleAdmin, model.RoleHR}
	rolesSupport    = []string{model.RoleAdmin, model.RoleSupport}
	rolesAdmin      = []string{model.RoleAdmin}
	rolesBackOffice = []string{model.RoleAdmin, model.RoleHR, model.RoleSupport}
)
