package dto

type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// WSEvent is a WebSocket message for real-time index notifications.
type WSEvent struct {
	Type    string      `json:"type"` // image_indexed
	EventID string      `json:"event_id"`
	Data    IndexedData `json:"data"`
}

type IndexedData struct {
	ImageID   string `json:"image_id"`
	SourceKey string `json:"src_key"`
	Faces     int    `json:"faces"`
	IndexedAt string `json:"indexed_at"`
}
