// service/services.go
package service

import (
	"github.com/redis/go-redis/v9"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	"github.com/dev-mohitbeniwal/blobsas/config"
	"github.com/dev-mohitbeniwal/blobsas/dao"
	"github.com/dev-mohitbeniwal/blobsas/db"
	"github.com/dev-mohitbeniwal/blobsas/metrics"
	"github.com/dev-mohitbeniwal/blobsas/model"
	pdp_dao "github.com/dev-mohitbeniwal/blobsas/pdp/dao"
	"github.com/dev-mohitbeniwal/blobsas/pdp/engine"
	"github.com/dev-mohitbeniwal/blobsas/sas"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

type Services struct {
	Blob   IBlobService
	Access IAccessService
	Audit  audit.Service
}

func InitializeServices(
	cfg *config.Configuration,
	redisClient redis.UniversalClient,
	policyStore dao.PolicyStore,
	auditService audit.Service,
	m metrics.Metrics,
	eventBus *util.EventBus,
) (*Services, error) {
	cred, err := sas.NewSharedKeyCredential(cfg.Storage.AccountName, cfg.Storage.AccountKey)
	if err != nil {
		return nil, err
	}
	mapping, err := model.NewOperationPermissions(cfg.Storage.DeleteRequires)
	if err != nil {
		return nil, err
	}

	var cipher *db.Cipher
	if cfg.Redis.EncryptionKey != "" {
		if cipher, err = db.NewCipher([]byte(cfg.Redis.EncryptionKey)); err != nil {
			return nil, err
		}
	}

	containerDAO := dao.NewContainerDAO(redisClient)
	blobDAO := dao.NewBlobDAO(redisClient, containerDAO, cipher)
	evaluator := engine.NewEvaluator(cred, mapping, pdp_dao.NewPolicyRetrievalDAO(policyStore))

	services := &Services{
		Blob:   NewBlobService(containerDAO, blobDAO, policyStore, cfg.Storage.MaxStoredPolicies, auditService, eventBus),
		Access: NewAccessService(evaluator, auditService, m),
		Audit:  auditService,
	}
	return services, nil
}
