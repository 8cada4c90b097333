package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Message 一封待投递的通知邮件
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sink 通知出口。投递失败由调用侧记日志，绝不回滚业务状态
type Sink interface {
	Send(ctx context.Context, m Message) error
}

// LogSink 未配置 SMTP 时的兜底：只打日志
type LogSink struct{ Log *zap.Logger }

func (s LogSink) Send(_ context.Context, m Message) error {
	s.Log.Info("notification (log only)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)
	return nil
}

// Dispatch 异步 fire-and-forget：独立超时，失败只记日志
func Dispatch(l *zap.Logger, s Sink, m Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Send(ctx, m); err != nil {
			l.Error("send notification failed",
				zap.String("to", m.To),
				zap.String("subject", m.Subject),
				zap.Error(err),
			)
		}
	}()
}
