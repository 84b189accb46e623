// rbac/cache.go
package rbac

import (
	"context"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/db"
	logger "github.com/dev-mohitbeniwal/warden/logging"
)

// RedisDecisionCache backs the decision cache with the shared Redis client.
// Every failure is treated as a miss; the services invalidate entries
// synchronously on grant mutations (see service package), and the short TTL
// bounds staleness if an invalidation is ever missed.
type RedisDecisionCache struct{}

var _ DecisionCache = RedisDecisionCache{}

func (RedisDecisionCache) Get(ctx context.Context, userID, organizationID string) ([]string, bool) {
	codenames, err := db.GetCachedEffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		logger.Warn("Decision cache read failed", zap.Error(err), zap.String("userID", userID))
		return nil, false
	}
	if codenames == nil {
		return nil, false
	}
	return codenames, true
}

func (RedisDecisionCache) Put(ctx context.Context, userID, organizationID string, codenames []string) {
	if err := db.CacheEffectivePermissions(ctx, userID, organizationID, codenames); err != nil {
		logger.Warn("Decision cache write failed", zap.Error(err), zap.String("userID", userID))
	}
}
