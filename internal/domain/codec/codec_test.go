package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := editing.ClozeChoiceProps{
		VarName:       "shape",
		CorrectAnswer: "triangle",
		Options:       []string{"triangle", "square", "circle"},
		Placeholder:   "Pick a shape",
		Color:         "#8B5CF6",
	}

	encoded := Encode(original)
	require.NotEmpty(t, encoded)

	var recovered editing.ClozeChoiceProps
	require.NoError(t, Decode(encoded, &recovered))
	assert.Equal(t, original, recovered)
}

func TestEncodedFormIsAttributeSafe(t *testing.T) {
	encoded := Encode(editing.TooltipProps{
		Text:    `the "hypotenuse"`,
		Tooltip: "longest side <em>opposite</em> the right angle & more",
	})
	require.NotEmpty(t, encoded)
	for _, forbidden := range []string{`"`, "<", ">", "&", " "} {
		assert.NotContains(t, encoded, forbidden)
	}
}

func TestEncodeFailsSoft(t *testing.T) {
	// Channels are not JSON-serializable; encoding must not block rendering.
	assert.Empty(t, Encode(map[string]any{"ch": make(chan int)}))
}

func TestDecodeRejectsBadInput(t *testing.T) {
	var out editing.ToggleProps

	err := Decode("", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty encoded configuration")

	assert.Error(t, Decode("not base64!!", &out))

	// Valid base64 wrapping invalid JSON.
	assert.Error(t, Decode("QQ==", &out))
}
