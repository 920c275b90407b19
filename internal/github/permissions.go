// Package github answers repository questions that only the GitHub API can answer: who may push and which branches
// are protected.
package github

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/cchalm/scm-folders/internal/repository"
)

const DefaultPermissionTTL = time.Minute

type cachedPermission struct {
	permitted bool
	expires   time.Time
}

// PushPermissionChecker reports whether the authenticated user may push to a repository. Answers are cached per
// repository for a short time because every folder operation asks
type PushPermissionChecker struct {
	client *github.Client
	ttl    time.Duration
	now    func() time.Time

	loginMu sync.Mutex
	login   string

	cache *xsync.Map[repository.Ref, cachedPermission]
}

func NewPushPermissionChecker(client *github.Client, ttl time.Duration) *PushPermissionChecker {
	return &PushPermissionChecker{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		cache:  xsync.NewMap[repository.Ref, cachedPermission](),
	}
}

func (c *PushPermissionChecker) IsPushPermitted(ctx context.Context, ref repository.Ref) (bool, error) {
	if cached, ok := c.cache.Load(ref); ok && c.now().Before(cached.expires) {
		return cached.permitted, nil
	}

	login, err := c.authenticatedLogin(ctx)
	if err != nil {
		return false, err
	}

	level, resp, err := c.client.Repositories.GetPermissionLevel(ctx, ref.Namespace, ref.Name, login)
	var permitted bool
	switch {
	case err == nil:
		permitted = isPushLevel(level.GetPermission())
	case statusCode(resp) == http.StatusNotFound || statusCode(resp) == http.StatusForbidden:
		// The repository is invisible to the user, which implies that pushing is not possible either
		permitted = false
	default:
		return false, fmt.Errorf("failed to get permission level of %s on %s: %w", login, ref, err)
	}

	c.cache.Store(ref, cachedPermission{permitted: permitted, expires: c.now().Add(c.ttl)})
	return permitted, nil
}

func (c *PushPermissionChecker) authenticatedLogin(ctx context.Context) (string, error) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	if c.login != "" {
		return c.login, nil
	}

	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	c.login = user.GetLogin()
	return c.login, nil
}

func isPushLevel(permission string) bool {
	switch permission {
	case "admin", "maintain", "write":
		return true
	default:
		return false
	}
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
