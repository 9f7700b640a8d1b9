package usecase

import "context"

type EmbeddingsInfra interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type ChatCompletionInfra interface {
	Complete(ctx context.Context, messages []ChatTurn) (string, error)
}

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (string, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
