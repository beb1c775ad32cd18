package navmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vugu/vgrouter/v2"
)

func TestResult(t *testing.T) {

	var tlist = []struct {
		name string
		err  error
		out  string
	}{
		{"nil", nil, ResultCommitted},
		{"abort", &vgrouter.AbortError{Reason: "login required"}, ResultAborted},
		{"superseded", &vgrouter.AbortError{Reason: vgrouter.AbortSuperseded}, ResultSuperseded},
		{"timeout", &vgrouter.AbortError{Reason: vgrouter.AbortTimeout}, ResultTimeout},
		{"guard", &vgrouter.GuardError{Cause: errors.New("boom")}, ResultGuardFailure},
		{"nomatch", &vgrouter.NavigationError{Location: "/x", Err: vgrouter.ErrNoMatch}, ResultNoMatch},
		{"unknown", &vgrouter.NavigationError{Name: "x", Err: vgrouter.ErrUnknownRouteName}, ResultUnknownRoute},
		{"redirects", &vgrouter.NavigationError{Location: "/x", Err: vgrouter.ErrTooManyRedirects}, ResultTooManyRedirects},
		{"other", errors.New("history full"), ResultError},
	}

	for _, ti := range tlist {
		t.Run(ti.name, func(t *testing.T) {
			assert.Equal(t, ti.out, Result(ti.err))
		})
	}
}

func TestAttach(t *testing.T) {

	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "test"}))

	tbl := vgrouter.MustNewRouteTable(
		vgrouter.RouteDefinition{Path: "/", Name: "home"},
		vgrouter.RouteDefinition{Path: "/a", Name: "a"},
		vgrouter.RouteDefinition{Path: "/old", Redirect: "/a"},
		vgrouter.RouteDefinition{Path: "/blocked", BeforeEnter: []vgrouter.Guard{
			vgrouter.GuardFunc(func(ctx context.Context, to, from vgrouter.ResolvedRoute) (vgrouter.GuardResult, error) {
				return vgrouter.Abort("nope"), nil
			}),
		}},
	)
	r := vgrouter.New(tbl, nil)
	defer r.Close()

	detach := c.Attach(r)

	_, err := r.NavigateTo(ctx, "/a")
	require.NoError(t, err)
	_, err = r.NavigateTo(ctx, "/old")
	require.NoError(t, err)
	_, err = r.NavigateTo(ctx, "/missing")
	require.Error(t, err)
	_, err = r.NavigateTo(ctx, "/blocked")
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.navigations.WithLabelValues("push", ResultCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.navigations.WithLabelValues("push", ResultNoMatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.navigations.WithLabelValues("push", ResultAborted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.redirects))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))

	detach()
	_, err = r.NavigateTo(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.navigations.WithLabelValues("push", ResultCommitted)))

	n, err := testutil.GatherAndCount(reg, "vgrouter_navigations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
