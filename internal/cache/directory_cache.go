package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hr-approval-service/internal/clients"
)

// DirectoryCache is a read-through Redis cache in front of the organization
// and employee directories. Directory data changes rarely relative to how
// often templates are resolved, so short-TTL caching keeps document creation
// off the directory services' hot path.
type DirectoryCache struct {
	client *redis.Client
	ttl    time.Duration

	org clients.OrganizationDirectory
	emp clients.EmployeeDirectory
}

// NewDirectoryCache creates a cache wrapping the given directories. When the
// Redis connection cannot be established the cache degrades gracefully and
// every lookup goes straight to the backing directory.
func NewDirectoryCache(addr, password string, db int, ttl time.Duration, org clients.OrganizationDirectory, emp clients.EmployeeDirectory) *DirectoryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
	}

	return &DirectoryCache{
		client: client,
		ttl:    ttl,
		org:    org,
		emp:    emp,
	}
}

// GetDepartmentHead resolves a department head, consulting the cache first
func (c *DirectoryCache) GetDepartmentHead(ctx context.Context, tenantID string, departmentID uuid.UUID) (*clients.DirectoryEmployee, error) {
	key := fmt.Sprintf("dir:%s:dept-head:%s", tenantID, departmentID)
	if hit := c.get(ctx, key); hit != nil {
		return hit, nil
	}

	employee, err := c.org.GetDepartmentHead(ctx, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, employee)
	return employee, nil
}

// GetPositionHolder resolves a position holder, consulting the cache first
func (c *DirectoryCache) GetPositionHolder(ctx context.Context, tenantID string, positionCode string, departmentID uuid.UUID) (*clients.DirectoryEmployee, error) {
	key := fmt.Sprintf("dir:%s:pos:%s:%s", tenantID, departmentID, positionCode)
	if hit := c.get(ctx, key); hit != nil {
		return hit, nil
	}

	employee, err := c.org.GetPositionHolder(ctx, tenantID, positionCode, departmentID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, employee)
	return employee, nil
}

// GetManager resolves an employee's manager, consulting the cache first
func (c *DirectoryCache) GetManager(ctx context.Context, tenantID string, employeeID uuid.UUID) (*clients.DirectoryEmployee, error) {
	key := fmt.Sprintf("dir:%s:manager:%s", tenantID, employeeID)
	if hit := c.get(ctx, key); hit != nil {
		return hit, nil
	}

	employee, err := c.emp.GetManager(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, employee)
	return employee, nil
}

func (c *DirectoryCache) get(ctx context.Context, key string) *clients.DirectoryEmployee {
	if c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil (cache miss) and transport errors are both treated as a
		// miss; the backing directory remains the source of truth
		return nil
	}

	var employee clients.DirectoryEmployee
	if err := json.Unmarshal(data, &employee); err != nil {
		return nil
	}
	return &employee
}

func (c *DirectoryCache) set(ctx context.Context, key string, employee *clients.DirectoryEmployee) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(employee)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate removes all cached directory entries for a tenant
func (c *DirectoryCache) Invalidate(ctx context.Context, tenantID string) error {
	if c.client == nil {
		return nil
	}

	pattern := fmt.Sprintf("dir:%s:*", tenantID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

// Close closes the Redis connection
func (c *DirectoryCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsAvailable returns true if the cache is available
func (c *DirectoryCache) IsAvailable() bool {
	return c.client != nil
}
