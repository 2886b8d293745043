// controller/controllers.go
package controller

import "github.com/dev-mohitbeniwal/blobsas/service"

type Controllers struct {
	Blob  *BlobController
	Audit *AuditController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Blob:  NewBlobController(services.Blob, services.Access),
		Audit: NewAuditController(services.Audit),
	}
}
