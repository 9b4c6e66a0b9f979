package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Breakout        Category = "Breakout"
	Audio           Category = "Audio"
	Redis           Category = "Redis"
	MongoDB         Category = "MongoDB"
	RabbitMQ        Category = "RabbitMQ"
	WebSocket       Category = "WebSocket"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Breakout
	RoomLifecycle SubCategory = "RoomLifecycle"
	Timer         SubCategory = "Timer"
	JoinGrant     SubCategory = "JoinGrant"

	// Audio
	Transfer SubCategory = "Transfer"
	Rejoin   SubCategory = "Rejoin"

	// Events
	Broadcast SubCategory = "Broadcast"
	Consume   SubCategory = "Consume"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
	MeetingID    ExtraKey = "MeetingId"
	RoomID       ExtraKey = "RoomId"
	UserID       ExtraKey = "UserId"
	TransferID   ExtraKey = "TransferId"
	LogCode      ExtraKey = "LogCode"
)
