package main

import "edupay_backend/internal/app"

func main() {
	app.Run()
}
