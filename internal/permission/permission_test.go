package permission

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cchalm/scm-folders/internal/repository"
)

var heartOfGold = repository.Ref{Namespace: "hitchhiker", Name: "HeartOfGold"}

func TestCheckPush_Permitted(t *testing.T) {
	checker := CheckerFunc(func(ctx context.Context, repo repository.Ref) (bool, error) {
		require.Equal(t, heartOfGold, repo)
		return true, nil
	})
	require.NoError(t, CheckPush(context.Background(), checker, heartOfGold))
}

func TestCheckPush_Denied(t *testing.T) {
	checker := CheckerFunc(func(ctx context.Context, repo repository.Ref) (bool, error) {
		return false, nil
	})
	err := CheckPush(context.Background(), checker, heartOfGold)
	require.ErrorIs(t, err, ErrDenied)
}

func TestCheckPush_Error(t *testing.T) {
	boom := fmt.Errorf("boom")
	checker := CheckerFunc(func(ctx context.Context, repo repository.Ref) (bool, error) {
		return false, boom
	})
	err := CheckPush(context.Background(), checker, heartOfGold)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrDenied)
}
