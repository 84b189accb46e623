// service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dev-mohitbeniwal/warden/audit"
	"github.com/dev-mohitbeniwal/warden/dao"
	"github.com/dev-mohitbeniwal/warden/rbac"
	"github.com/dev-mohitbeniwal/warden/util"
)

type Services struct {
	Permission IPermissionService
	Role       IRoleService
	Group      IGroupService
	Grant      IGrantService

	// Enforcer backs the route middleware; it shares the Grant service's
	// checker so both surfaces see identical decisions.
	Enforcer *rbac.Enforcer
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	permissionDAO := dao.NewPermissionDAO(driver, auditService)
	roleDAO := dao.NewRoleDAO(driver, auditService)
	groupDAO := dao.NewGroupDAO(driver, auditService)
	grantDAO := dao.NewGrantDAO(driver, auditService)
	store := dao.NewStore(permissionDAO, roleDAO, groupDAO, grantDAO)

	checker := rbac.NewChecker(store, rbac.WithCache(rbac.RedisDecisionCache{}))

	services := &Services{
		Permission: NewPermissionService(permissionDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Role:       NewRoleService(roleDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Group:      NewGroupService(groupDAO, roleDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Grant:      NewGrantService(grantDAO, roleDAO, checker, auditService, validationUtil, cacheService, eventBus),
		Enforcer:   rbac.NewEnforcer(checker),
	}

	return services, nil
}
