package main

import (
	"bookstore-choreography/cmd/bootstrap"
	"bookstore-choreography/cmd/bootstrap/components"
)

// @title           bookstore-choreography
// @version         1.0
// @description     Order, payment, catalog and notification services coordinated by events.

// @BasePath  /
// @schemes http https
func main() {
	bootstrap.Run(
		components.CatalogModule,
		components.OrderModule,
		components.PaymentModule,
		components.NotificationModule,
	)
}
