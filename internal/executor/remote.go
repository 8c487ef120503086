package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/khanhnv2901/domainscan/internal/env"
	"github.com/khanhnv2901/domainscan/internal/meta"
	"github.com/khanhnv2901/domainscan/internal/scanner"
	"github.com/khanhnv2901/domainscan/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/domainscan/internal/shared/errors"
)

// LambdaInvoker is the slice of the Lambda API the remote executor needs.
// One shared client serves every task in the run.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Remote dispatches a scan to the serverless function task_<scanner>.
type Remote struct {
	Client     LambdaInvoker
	MaxRetries int
	Log        *zap.SugaredLogger
}

// envelope is the request body sent to the remote function. The fast cache
// never rides along.
type envelope struct {
	Domain      string          `json:"domain"`
	Options     scanner.Options `json:"options"`
	Scanner     string          `json:"scanner"`
	Environment env.Environment `json:"environment"`
}

// Scan invokes the remote function, retrying up to MaxRetries reattempts on
// retriable failures. On exhaustion the most recent successfully decoded
// data is returned, which may be nil. All attempt errors land in m.Errors;
// remote execution details merge into m.Lambda.
func (r *Remote) Scan(ctx context.Context, sc scanner.Scanner, domainName string, e env.Environment, opts scanner.Options, m *meta.Meta) (any, error) {
	lam := m.EnsureLambda()

	body, err := json.Marshal(envelope{
		Domain:      domainName,
		Options:     opts,
		Scanner:     sc.Name(),
		Environment: e.WithoutFastCache(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode invocation envelope: %w", err)
	}

	functionName := constants.LambdaFunctionPrefix + sc.Name()

	var lastData any
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			lam.Retries++
		}

		data, hasData, attemptErr := r.invokeOnce(ctx, functionName, body, m)
		if hasData {
			lastData = data
		}
		if attemptErr == nil {
			return data, nil
		}

		m.AddError("%s", attemptErr.Error())
		if r.Log != nil {
			r.Log.Warnf("remote %s(%s) attempt %d failed: %v", functionName, domainName, attempt+1, attemptErr)
		}

		if !retriable(attemptErr) {
			return lastData, attemptErr
		}
		if attempt >= r.MaxRetries {
			return lastData, nil
		}
	}
}

// invokeOnce performs one synchronous invocation and classifies the
// response. hasData reports whether a data field decoded, even when the
// attempt also carried a scanner-level error.
func (r *Remote) invokeOnce(ctx context.Context, functionName string, body []byte, m *meta.Meta) (data any, hasData bool, err error) {
	invokeCtx, cancel := context.WithTimeout(ctx, constants.LambdaReadTimeout)
	defer cancel()

	out, err := r.Client.Invoke(invokeCtx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        body,
	})
	if err != nil {
		return nil, false, fmt.Errorf("invoke %s: %w", functionName, err)
	}

	if len(out.Payload) == 0 || string(out.Payload) == "null" {
		return nil, false, fmt.Errorf("%w: %s", sharederrors.ErrEmptyResponse, functionName)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(out.Payload, &fields); err != nil {
		return nil, false, fmt.Errorf("decode response from %s: %w", functionName, err)
	}

	// Platform-level failure: the function itself errored out.
	if raw, ok := fields["errorMessage"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) != nil {
			msg = string(raw)
		}
		return nil, false, fmt.Errorf("remote platform error from %s: %s", functionName, msg)
	}

	// Remote execution details arrive with every well-formed response,
	// including failed attempts; keep whatever the attempt reported.
	if raw, ok := fields["lambda"]; ok {
		var update meta.Lambda
		if json.Unmarshal(raw, &update) == nil {
			m.EnsureLambda().Merge(update)
		}
	}

	if raw, ok := fields["data"]; ok {
		if uerr := json.Unmarshal(raw, &data); uerr != nil {
			return nil, false, fmt.Errorf("decode data from %s: %w", functionName, uerr)
		}
		hasData = true
	}

	if raw, ok := fields["error"]; ok && string(raw) != "null" {
		var msg string
		if json.Unmarshal(raw, &msg) != nil {
			msg = string(raw)
		}
		return data, hasData, fmt.Errorf("remote scanner error from %s: %s", functionName, msg)
	}

	if !hasData {
		return nil, false, fmt.Errorf("%w: %s", sharederrors.ErrMissingData, functionName)
	}

	return data, true, nil
}

// retriable classifies attempt failures. Timeouts, throttling and anything
// the remote side reported inside a decoded response are retried; hard API
// rejections (missing function, denied access) are not.
func retriable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException", "AccessDeniedException", "InvalidRequestContentException":
			return false
		}
		return true
	}

	return true
}
