package chat

import (
	"aintranet-backend/service/tools"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemPrompt(t *testing.T) {
	caller := tools.Caller{UserID: 7, Username: "jperez", FullName: "Juan Pérez", Role: "rrhh"}

	prompt, err := BuildSystemPrompt(caller, []string{"get_my_vacations", "approve_vacation"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Nombre: Juan Pérez")
	assert.Contains(t, prompt, "- Rol: rrhh")
	assert.Contains(t, prompt, "- Username: jperez")
	assert.Contains(t, prompt, "(usando las herramientas disponibles):\n- get_my_vacations\n- approve_vacation\n\n2. RESPONDER PREGUNTAS")
	assert.NotContains(t, prompt, "{{")
}

func TestBuildSystemPromptDefaults(t *testing.T) {
	prompt, err := BuildSystemPrompt(tools.Caller{Username: "anon"}, nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Nombre: Usuario")
	assert.Contains(t, prompt, "- Rol: empleado")
	assert.Contains(t, prompt, "disponibles):\n\n2. RESPONDER")
}
