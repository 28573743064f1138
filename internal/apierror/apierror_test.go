package apierror

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeShape(t *testing.T) {
	raw, err := json.Marshal(New("date invalide"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"date invalide"}`, string(raw))

	raw, err = json.Marshal(NewValidation(map[string]string{"Date": "required"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Erreur de validation","fields":{"Date":"required"}}`, string(raw))
}
