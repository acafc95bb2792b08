package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ExecInvoker runs the ETL as a local command.
type ExecInvoker struct {
	Command string
	Args    []string
}

// Invoke runs the command and waits for it to exit.
func (e *ExecInvoker) Invoke(ctx context.Context) error {
	if strings.TrimSpace(e.Command) == "" {
		return fmt.Errorf("pipeline command is not configured")
	}
	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pipeline command: %w: %s", err, truncate(string(out), 500))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SQSInvoker asks a queue worker to run the ETL.
type SQSInvoker struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSInvoker constructs an SQS-backed invoker.
func NewSQSInvoker(ctx context.Context, region, queueURL string) (*SQSInvoker, error) {
	if strings.TrimSpace(queueURL) == "" {
		return nil, fmt.Errorf("pipeline queue URL is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SQSInvoker{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}, nil
}

type runMessage struct {
	Type        string    `json:"type"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Invoke sends the run request to the queue.
func (s *SQSInvoker) Invoke(ctx context.Context) error {
	payload, err := json.Marshal(runMessage{
		Type:        "pipeline.run",
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode run message: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("sqs send message: %w", err)
	}
	return nil
}

var (
	_ Invoker = (*ExecInvoker)(nil)
	_ Invoker = (*SQSInvoker)(nil)
)
