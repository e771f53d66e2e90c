package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

func startClock(t *testing.T, fc *clockwork.FakeClock, country, tz string) *clock.Clock {
	t.Helper()
	c, err := clock.Start(clock.Config{Country: country, Timezone: tz, Locale: "it-IT", Visible: true}, clock.WithClock(fc))
	require.NoError(t, err)
	return c
}

func TestBoardClocks(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC))
	b := New(nil)
	defer b.Close()

	rome := startClock(t, fc, "Italy", "Europe/Rome")
	ny := startClock(t, fc, "USA", "America/New_York")
	b.AddClock(rome)
	b.AddClock(ny)

	assert.Equal(t, []string{"Italy", "USA"}, b.Countries())
	got, ok := b.Clock("USA")
	require.True(t, ok)
	assert.Same(t, ny, got)

	_, ok = b.Clock("France")
	assert.False(t, ok)

	// same country replaces and stops the previous clock
	rome2 := startClock(t, fc, "Italy", "Europe/Rome")
	b.AddClock(rome2)
	assert.False(t, rome.Running())
	assert.True(t, rome2.Running())
	assert.Equal(t, []string{"Italy", "USA"}, b.Countries())
	assert.Len(t, b.Clocks(), 2)
}

func TestBoardCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"Leanne"}]`)
	}))
	defer srv.Close()

	b := New(nil)
	defer b.Close()

	l := loader.New()
	b.AddCollection(l.Load(context.Background(), loader.Source{Name: "users", Endpoint: srv.URL}), "name")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Wait(ctx))

	col, ok := b.Collection("users")
	require.True(t, ok)
	assert.Equal(t, models.StatusReady, col.Status())
	assert.Equal(t, "name", b.DisplayField("users"))
	assert.Len(t, b.Collections(), 1)
}

func TestBoardReplaceDetachesPrevious(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()
	defer close(release)

	b := New(nil)
	defer b.Close()

	l := loader.New()
	first := l.Load(context.Background(), loader.Source{Name: "albums", Endpoint: srv.URL})
	b.AddCollection(first, "title")
	second := l.Load(context.Background(), loader.Source{Name: "albums", Endpoint: srv.URL})
	b.AddCollection(second, "title")

	assert.True(t, first.Detached())
	assert.False(t, second.Detached())

	got, _ := b.Collection("albums")
	assert.Same(t, second, got)
	assert.Len(t, b.Collections(), 1)
}

func TestBoardClose(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Now())
	b := New(nil)

	c := startClock(t, fc, "Italy", "Europe/Rome")
	b.AddClock(c)
	b.Close()
	b.Close()

	assert.False(t, c.Running())

	// additions after Close are torn down at once
	late := startClock(t, fc, "USA", "America/New_York")
	b.AddClock(late)
	assert.False(t, late.Running())
	_, ok := b.Clock("USA")
	assert.False(t, ok)
}
