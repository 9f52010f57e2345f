// Package errors provides standardized error handling for the unit registry.
//
// # Overview
//
// Errors use a three-class classification: Transient (temporary, retryable),
// Invalid (bad input or a rule violation, do not retry) and Fatal
// (unrecoverable). The class is the severity hint attached to every failure
// returned by a registry operation.
//
// # Registry Taxonomy
//
// Registry operations fail with one of five sentinels, reachable through
// errors.Is on the returned error:
//
//   - ErrConfiguration: empty name, unknown loader/handler/kind tag, no resource found,
//     runaway loader chain
//   - ErrDuplicateName: the name is already registered anywhere in the registry
//   - ErrUnknownParent: the declared parent is not registered
//   - ErrTeardownOrder: remove attempted while children or dependents are live
//   - ErrLoaderFailure: the loader collaborator failed (I/O or parse)
//
// WrapKind attaches a sentinel to a cause and classifies the result:
//
//	return errors.WrapKind(errors.ErrDuplicateName, nil, "Context", "Create", "name check")
//
// Loader failures whose cause is transient keep the transient class so the
// resolver can retry them.
//
// # Error Wrapping Pattern
//
// All wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions set the classification explicitly:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// # Retry Configuration
//
// RetryConfig converts to the pkg/retry Config used around loader calls:
//
//	err := retry.Do(ctx, errors.DefaultRetryConfig().ToRetryConfig(), fn)
//
// # Thread Safety
//
// Classification and wrapping are safe for concurrent use. Sentinels are
// immutable and ClassifiedError values may be shared after creation.
package errors
