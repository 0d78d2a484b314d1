package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vendor-intake/internal/resilience"
	"github.com/sells-group/vendor-intake/pkg/anthropic"
)

type fakeClient struct {
	req  anthropic.MessageRequest
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestAnthropicVision_Recognize(t *testing.T) {
	fc := &fakeClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Acme Inc\ninfo@acme.com"}},
	}}
	v := NewAnthropicVision(fc, "")

	text, err := v.Recognize(context.Background(), NewImage("card.jpg", []byte("jpg")))
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc\ninfo@acme.com", text)

	assert.Equal(t, defaultAnthropicModel, fc.req.Model)
	require.Len(t, fc.req.Messages, 1)
	require.Len(t, fc.req.Messages[0].Images, 1)
	assert.Equal(t, "image/jpeg", fc.req.Messages[0].Images[0].MediaType)
	assert.Equal(t, []byte("jpg"), fc.req.Messages[0].Images[0].Data)
}

func TestAnthropicVision_TransientStatus(t *testing.T) {
	fc := &fakeClient{err: &sdk.Error{
		StatusCode: 529,
		Request:    httptest.NewRequest(http.MethodPost, "/v1/messages", nil),
		Response:   &http.Response{StatusCode: 529},
	}}
	_, err := NewAnthropicVision(fc, "m").Recognize(context.Background(), NewImage("card.png", []byte("x")))
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestAnthropicVision_PermanentError(t *testing.T) {
	fc := &fakeClient{err: errors.New("bad request")}
	_, err := NewAnthropicVision(fc, "m").Recognize(context.Background(), NewImage("card.png", []byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr: anthropic vision for card.png")
	assert.False(t, resilience.IsTransient(err))
}
