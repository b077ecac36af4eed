package response

type UserAuthResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"nombre_completo"`
	Role     string `json:"rol"`
	Token    string `json:"token"`
}
