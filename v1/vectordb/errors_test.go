package vectordb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

func TestErrorMatchesSentinelOfItsKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
	}{
		{"InvalidArgument", NewInvalidArgument(OpQuery, "topK must be positive"), ErrInvalidArgument, KindInvalidArgument},
		{"Transport", NewTransportFailure(OpFetch, "404", "not found", nil), ErrTransport, KindTransport},
		{"Decode", NewDecodeFailure(OpList, io.ErrUnexpectedEOF), ErrDecode, KindDecode},
		{"Canceled", NewCanceled(OpUpsert, context.Canceled, nil), ErrCanceled, KindCanceled},
	}

	sentinels := []error{ErrInvalidArgument, ErrTransport, ErrDecode, ErrCanceled}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			for _, s := range sentinels {
				assert.Equal(t, s == tt.sentinel, errors.Is(tt.err, s), "errors.Is(%v, %v)", tt.err, s)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewTransportFailure(OpQuery, "400", `{"message":"bad filter"}`, nil)
	assert.Equal(t, `vectordb: query: transport_failure (400): {"message":"bad filter"}`, err.Error())

	err = NewDecodeFailure(OpFetch, io.ErrUnexpectedEOF)
	assert.Equal(t, "vectordb: fetch: decode_failure: unexpected EOF", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDecodeFailure(OpQuery, io.ErrUnexpectedEOF))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, IsDecodeFailure(err))

	var e *Error
	assert.ErrorAs(t, err, &e)
	assert.Equal(t, OpQuery, e.Op)
}

func TestCanceledMatchesContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err, ok := FromContext(ctx, OpQuery, errors.New("connection reset"))
	assert.True(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.True(t, IsCanceled(err))

	_, ok = FromContext(context.Background(), OpQuery, errors.New("connection reset"))
	assert.False(t, ok)
}

func TestClosed(t *testing.T) {
	err := NewClosed(OpDeleteAll)
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, IsClosed(err))
	assert.True(t, IsTransportFailure(err))
}

func TestKindOfForeignErrors(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindInvalidArgument, KindOf(fmt.Errorf("x: %w", metadata.ErrUnsupportedType)))
	assert.Equal(t, KindDecode, KindOf(&metadata.DecodeError{Token: "1e400", Reason: "overflow"}))
	assert.Equal(t, KindCanceled, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindTransport, KindOf(errors.New("boom")))
	assert.False(t, IsTransportFailure(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ok", KindNone.String())
	assert.Equal(t, "invalid_argument", KindInvalidArgument.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
