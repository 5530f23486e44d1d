package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"gfe/internal/backend/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanBackendCall, tracer.String(tracer.AttrPath, "/api/products"))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Int(tracer.AttrStatus, 200))
	span.AddEvent(tracer.EventBackoff, tracer.Duration(tracer.AttrBackoff, 2*time.Second))
	span.End(errors.New("boom"))
}

func TestOTelTracerWithInjectedProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	_, span := tr.Start(context.Background(), tracer.SpanBackendAttempt,
		tracer.Int(tracer.AttrAttempt, 1),
		tracer.Bool("flag", true),
	)
	require.NotNil(t, span)
	span.End(nil)
}

func TestTokenFingerprint(t *testing.T) {
	assert.Empty(t, tracer.TokenFingerprint(""))
	assert.Len(t, tracer.TokenFingerprint("abc"), 16)
	assert.Equal(t, tracer.TokenFingerprint("abc"), tracer.TokenFingerprint("abc"))
	assert.NotEqual(t, tracer.TokenFingerprint("abc"), tracer.TokenFingerprint("abd"))
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, int64(7), tracer.Int("n", 7).Value)
	assert.Equal(t, int64(150), tracer.Duration("d", 150*time.Millisecond).Value)
}
