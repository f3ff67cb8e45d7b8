package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type checkFunc struct {
	name string
	err  error
}

func (c checkFunc) Name() string                { return c.name }
func (c checkFunc) Check(context.Context) error { return c.err }

func TestReadiness(t *testing.T) {
	ok := NewService(checkFunc{name: "postgres"}, checkFunc{name: "storage"})
	assert.NoError(t, ok.Ready(context.Background()))
	report, ready := ok.Report(context.Background())
	assert.True(t, ready)
	assert.Equal(t, map[string]string{"postgres": "ok", "storage": "ok"}, report)

	broken := NewService(checkFunc{name: "postgres"}, checkFunc{name: "storage", err: errors.New("read-only file system")})
	err := broken.Ready(context.Background())
	assert.ErrorContains(t, err, "storage")
	report, ready = broken.Report(context.Background())
	assert.False(t, ready)
	assert.Equal(t, "unavailable", report["storage"])
}
