package aws_ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/goliatone/go-statuspage/pkg/adapters"
)

type fakeClient struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSendBuildsSESInput(t *testing.T) {
	client := &fakeClient{}
	adapter := New(nil,
		WithConfig(Config{From: "status@example.com", ConfigurationSet: "ops"}),
		WithClient(client),
	)

	err := adapter.Send(context.Background(), adapters.Message{
		To:      "member@example.com",
		Subject: "🚨 Incident created in Acme",
		Text:    "text body",
		HTML:    "<p>html body</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected one SES call, got %d", len(client.inputs))
	}
	in := client.inputs[0]
	if aws.ToString(in.Source) != "status@example.com" {
		t.Fatalf("unexpected source %q", aws.ToString(in.Source))
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "member@example.com" {
		t.Fatalf("unexpected destination %+v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Message.Body.Html.Data) != "<p>html body</p>" {
		t.Fatalf("unexpected html body")
	}
	if aws.ToString(in.ConfigurationSetName) != "ops" {
		t.Fatalf("expected configuration set")
	}
	if adapter.cfg.Region != "us-east-1" {
		t.Fatalf("expected default region retained, got %s", adapter.cfg.Region)
	}
}

func TestSendOmitsEmptyParts(t *testing.T) {
	client := &fakeClient{}
	adapter := New(nil, WithConfig(Config{From: "status@example.com"}), WithClient(client))
	if err := adapter.Send(context.Background(), adapters.Message{To: "a@example.com", Text: "only text"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if client.inputs[0].Message.Body.Html != nil {
		t.Fatalf("expected html part omitted")
	}
}

func TestSendWrapsClientError(t *testing.T) {
	boom := errors.New("throttled")
	adapter := New(nil, WithConfig(Config{From: "status@example.com"}), WithClient(&fakeClient{err: boom}))
	err := adapter.Send(context.Background(), adapters.Message{To: "a@example.com", Text: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestDryRunSkipsClient(t *testing.T) {
	client := &fakeClient{}
	adapter := New(nil, WithConfig(Config{From: "status@example.com", DryRun: true}), WithClient(client))
	if err := adapter.Send(context.Background(), adapters.Message{To: "a@example.com", Text: "x"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(client.inputs) != 0 {
		t.Fatalf("expected no SES call on dry run")
	}
}

func TestSendValidation(t *testing.T) {
	adapter := New(nil, WithClient(&fakeClient{}))
	if err := adapter.Send(context.Background(), adapters.Message{Text: "x"}); err == nil {
		t.Fatalf("expected missing destination error")
	}
	if err := adapter.Send(context.Background(), adapters.Message{To: "a@example.com", Text: "x"}); err == nil {
		t.Fatalf("expected missing from error")
	}
}
