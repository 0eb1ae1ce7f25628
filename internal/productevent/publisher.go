package productevent

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	awslambda "github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

//go:generate mockgen -source=publisher.go -destination=../mocks/mock_productevent_publisher.go -package=mocks

// Publisher hands a lifecycle event to the recorder.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LambdaPublisher invokes the recorder function. With the RequestResponse
// invocation type the call blocks until the event is written; with Event it
// returns once Lambda has queued the event, and Lambda retries delivery.
type LambdaPublisher struct {
	client         lambdaiface.LambdaAPI
	functionName   string
	invocationType string
}

func NewLambdaPublisher(client lambdaiface.LambdaAPI, functionName, invocationType string) *LambdaPublisher {
	if invocationType == "" {
		invocationType = awslambda.InvocationTypeRequestResponse
	}
	return &LambdaPublisher{
		client:         client,
		functionName:   functionName,
		invocationType: invocationType,
	}
}

func (p *LambdaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errs.Wrap(err, "failed to marshal product event")
	}

	out, err := p.client.InvokeWithContext(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(p.functionName),
		InvocationType: aws.String(p.invocationType),
		Payload:        payload,
	})
	if err != nil {
		return errs.Downstream(err, "failed to invoke product events function")
	}

	status := aws.Int64Value(out.StatusCode)
	if status < 200 || status > 299 {
		return errs.Mark(errs.Newf("product events function returned status %d", status), errs.ErrDownstream)
	}
	if out.FunctionError != nil {
		return errs.Mark(errs.Newf("product events function failed (%s): %s",
			aws.StringValue(out.FunctionError), out.Payload), errs.ErrDownstream)
	}
	if p.invocationType != awslambda.InvocationTypeRequestResponse {
		return nil
	}

	var ack Ack
	if err := json.Unmarshal(out.Payload, &ack); err != nil {
		return errs.Mark(errs.Wrap(err, "unreadable product events acknowledgement"), errs.ErrDownstream)
	}
	if !ack.ProductEventCreated {
		return errs.Mark(errs.Newf("product event not created: %s", ack.Message), errs.ErrDownstream)
	}
	return nil
}

// RecorderPublisher records events in-process, for deployments and tools that
// talk to the events table directly instead of through the recorder function.
type RecorderPublisher struct {
	recorder *Recorder
}

func NewRecorderPublisher(recorder *Recorder) *RecorderPublisher {
	return &RecorderPublisher{recorder: recorder}
}

func (p *RecorderPublisher) Publish(ctx context.Context, e Event) error {
	_, err := p.recorder.Record(ctx, e)
	return err
}
