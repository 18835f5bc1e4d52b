package transcribe

import (
	"context"

	"go.uber.org/zap"
)

// Legacy exposes a Service through the boolean/string calling convention
// older callers expect: Init reports success as a bool and Transcribe
// returns either the transcript or a user-facing error message. A Legacy
// without a Service behaves as if no model was ever loaded.
type Legacy struct {
	svc *Service
}

func NewLegacy(svc *Service) *Legacy {
	return &Legacy{svc: svc}
}

// Init loads modelPath and reports whether it succeeded.
func (l *Legacy) Init(modelPath string) (ok bool) {
	if l == nil || l.svc == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger().Error("init panicked", zap.Any("panic", r))
			ok = false
		}
	}()
	return l.svc.Initialize(modelPath) == nil
}

// Transcribe never fails: errors come back as their user-facing message.
func (l *Legacy) Transcribe(pcm []int16, sampleRate int, language string) (text string) {
	if l == nil || l.svc == nil {
		return MsgNotInitialized
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger().Error("transcribe panicked", zap.Any("panic", r))
			text = MsgRecognitionFailed
		}
	}()

	transcript, err := l.svc.Transcribe(context.Background(), pcm, sampleRate, language)
	if err != nil {
		return UserMessage(err)
	}
	return transcript.Text
}

func (l *Legacy) logger() *zap.Logger {
	if l.svc == nil || l.svc.log == nil {
		return zap.NewNop()
	}
	return l.svc.log
}
