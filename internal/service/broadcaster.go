package service

// Broadcaster delivers events to websocket connections (avoids import cycle)
type Broadcaster interface {
	SendToConnection(connectionID string, msgType string, payload interface{})
	IsConnected(connectionID string) bool
}
