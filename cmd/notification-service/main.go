package main

import (
	"bookstore-choreography/cmd/bootstrap"
	"bookstore-choreography/cmd/bootstrap/components"
)

func main() {
	bootstrap.RunService(components.NotificationModule)
}
