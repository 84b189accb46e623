// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func effectiveKey(userID, organizationID string) string {
	return fmt.Sprintf("rbac:eff:%s:%s", userID, organizationID)
}

// CacheEffectivePermissions stores a resolved codename set under a short
// TTL. Staleness beyond redis.decisionCacheTTL would be a correctness
// violation for security checks, so the TTL stays small and mutations
// invalidate eagerly.
func CacheEffectivePermissions(ctx context.Context, userID, organizationID string, codenames []string) error {
	data, err := json.Marshal(codenames)
	if err != nil {
		return fmt.Errorf("failed to marshal permission set: %w", err)
	}

	ttl := viper.GetDuration("redis.decisionCacheTTL")
	err = RedisClient.Set(ctx, effectiveKey(userID, organizationID), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache permission set: %w", err)
	}

	logger.Debug("Permission set cached",
		zap.String("userID", userID),
		zap.String("organizationID", organizationID))
	return nil
}

// GetCachedEffectivePermissions returns the cached codename set, or a nil
// slice on a miss.
func GetCachedEffectivePermissions(ctx context.Context, userID, organizationID string) ([]string, error) {
	data, err := RedisClient.Get(ctx, effectiveKey(userID, organizationID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get permission set from cache: %w", err)
	}

	var codenames []string
	if err := json.Unmarshal([]byte(data), &codenames); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permission set: %w", err)
	}
	if codenames == nil {
		codenames = []string{}
	}
	return codenames, nil
}

// InvalidateUserPermissions drops every cached resolution for a single
// user, across organization contexts.
func InvalidateUserPermissions(ctx context.Context, userID string) error {
	return invalidatePattern(ctx, fmt.Sprintf("rbac:eff:%s:*", userID))
}

// InvalidateOrganizationPermissions drops every cached resolution inside an
// organization. Used when a role or group definition changes, since that
// can affect any member.
func InvalidateOrganizationPermissions(ctx context.Context, organizationID string) error {
	return invalidatePattern(ctx, fmt.Sprintf("rbac:eff:*:%s", organizationID))
}

// InvalidateAllPermissions drops every cached resolution. Used when a
// system role or a permission definition changes, since those are visible
// in every organization context.
func InvalidateAllPermissions(ctx context.Context) error {
	return invalidatePattern(ctx, "rbac:eff:*")
}

func invalidatePattern(ctx context.Context, pattern string) error {
	iter := RedisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate cached permissions: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached permissions: %w", err)
	}
	logger.Debug("Permission cache invalidated", zap.String("pattern", pattern))
	return nil
}

func CacheRole(ctx context.Context, role *model.Role) error {
	roleJSON, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("failed to marshal role: %w", err)
	}

	key := fmt.Sprintf("role:%s", role.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, roleJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}

	logger.Debug("Role cached successfully", zap.String("roleID", role.ID))
	return nil
}

func GetCachedRole(ctx context.Context, roleID string) (*model.Role, error) {
	key := fmt.Sprintf("role:%s", roleID)
	roleJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Role not found in cache", zap.String("roleID", roleID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get role from cache: %w", err)
	}

	var role model.Role
	err = json.Unmarshal([]byte(roleJSON), &role)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal role: %w", err)
	}

	return &role, nil
}

func DeleteCachedRole(ctx context.Context, roleID string) error {
	key := fmt.Sprintf("role:%s", roleID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete role from cache: %w", err)
	}
	logger.Debug("Role deleted from cache", zap.String("roleID", roleID))
	return nil
}

func CacheGroup(ctx context.Context, group *model.UserGroup) error {
	groupJSON, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}

	key := fmt.Sprintf("group:%s", group.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, groupJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache group: %w", err)
	}

	logger.Debug("Group cached successfully", zap.String("groupID", group.ID))
	return nil
}

func GetCachedGroup(ctx context.Context, groupID string) (*model.UserGroup, error) {
	key := fmt.Sprintf("group:%s", groupID)
	groupJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Group not found in cache", zap.String("groupID", groupID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get group from cache: %w", err)
	}

	var group model.UserGroup
	err = json.Unmarshal([]byte(groupJSON), &group)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal group: %w", err)
	}

	return &group, nil
}

func DeleteCachedGroup(ctx context.Context, groupID string) error {
	key := fmt.Sprintf("group:%s", groupID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete group from cache: %w", err)
	}
	logger.Debug("Group deleted from cache", zap.String("groupID", groupID))
	return nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
