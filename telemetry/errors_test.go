package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportWrapsCauseAndUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport(cause, "dial %s", "localhost:5984")

	assert.Equal(t, KindTransport, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "dial localhost:5984")
}

func TestMissingModelNamesTheOffendingIdentifier(t *testing.T) {
	err := MissingModel("amp$v1")
	assert.Equal(t, KindMissingModel, err.Kind)
	assert.Contains(t, err.Error(), `"amp$v1"`)
}

func TestErrorsAsDistinguishesKindAcrossConstructors(t *testing.T) {
	var schemaErr error = Schema("unknown cell %q", "mystery")
	var simErr error = Simulator(errors.New("eof"), "read chunk")

	var te *Error
	require.True(t, errors.As(schemaErr, &te))
	assert.Equal(t, KindSchema, te.Kind)

	te = nil
	require.True(t, errors.As(simErr, &te))
	assert.Equal(t, KindSimulator, te.Kind)
}

func TestStatusErrorCarriesCodeAndBody(t *testing.T) {
	err := Status(409, `{"error":"conflict"}`)
	assert.Equal(t, 409, err.Code)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "conflict")
}

func TestKindStringNames(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "missing_model", KindMissingModel.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
