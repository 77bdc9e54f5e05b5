package health

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status      string `json:"status" example:"OK" doc:"OK when the database answers"`
	Database    string `json:"database" example:"OK"`
	Assistant   string `json:"assistant" enum:"configured,missing_api_key" doc:"Whether ai functions can reach the model"`
	Subscribers int    `json:"realtime_subscribers" doc:"Open realtime subscriptions"`
}
