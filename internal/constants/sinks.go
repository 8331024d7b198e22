package constants

import "time"

const (
	DefaultMQTTTopic       = "apmapper/access_points"
	DefaultMQTTQOS         = 1
	DefaultMQTTTimeout     = 10 * time.Second
	DefaultS3Region        = "us-east-1"
	DefaultS3UploadTimeout = 2 * time.Minute
)
