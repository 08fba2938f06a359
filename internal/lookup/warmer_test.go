package lookup

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finlookup/internal/directory"
)

func TestWarmerRun(t *testing.T) {
	src := newMockSource()
	dir := directory.New(
		directory.Entry{Name: "Apple", Ticker: "AAPL"},
		directory.Entry{Name: "Apple Inc", Ticker: "AAPL"},
		directory.Entry{Name: "Microsoft", Ticker: "MSFT"},
	)
	svc := NewService(src, dir, Config{})

	w, err := NewWarmer(svc, "@every 1h", 2, zerolog.Nop())
	require.NoError(t, err)

	res := w.Run(context.Background())
	assert.Equal(t, 1, res.OK)
	assert.Equal(t, 1, res.Failed, "MSFT has no data")
	assert.Contains(t, src.calls, "info:AAPL")
	assert.Contains(t, src.calls, "info:MSFT")
}

func TestWarmerSchedule(t *testing.T) {
	svc := NewService(newMockSource(), nil, Config{})

	_, err := NewWarmer(svc, "not a schedule", 1, zerolog.Nop())
	assert.Error(t, err)

	w, err := NewWarmer(svc, "*/30 * * * *", 0, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	w.Stop(context.Background())
}
