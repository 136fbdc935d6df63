package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivatorsFactory_everyRegisteredTypeRoundTrips(t *testing.T) {
	types := []ActivationType{
		SigmoidActivation, TanhActivation, SinActivation, GaussActivation,
		ReluActivation, EluActivation, LeakyReluActivation, SeluActivation,
		SoftplusActivation, IdentityActivation, ClampedActivation, InvActivation,
		LogActivation, ExpActivation, AbsActivation, HatActivation,
		SquareActivation, CubeActivation,
	}

	for _, typ := range types {
		name, err := Activators.NameFromType(typ)
		require.NoError(t, err)

		resolved, err := Activators.TypeFromName(name)
		require.NoError(t, err)
		assert.Equal(t, typ, resolved)

		_, err = Activators.ActivateByType(0.5, typ)
		assert.NoError(t, err)
	}
}

func TestActivatorsFactory_unknownType(t *testing.T) {
	_, err := Activators.ActivateByType(0.5, ActivationType(255))
	assert.Error(t, err)

	_, err = Activators.TypeFromName("not-a-real-activation")
	assert.Error(t, err)
}

func TestSigmoidFn_steepenedAndBounded(t *testing.T) {
	assert.InDelta(t, 0.5, SigmoidFn(0), 1e-9)
	assert.Greater(t, SigmoidFn(1), 0.9)
	assert.Less(t, SigmoidFn(-1), 0.1)
}
