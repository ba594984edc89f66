package infra

import (
	"errors"
	"log/slog"

	"spa-storefront/internal/pkg/errs"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies a persistence error, defaulting to KindDBFailure.
// The result carries the matching errs taxonomy mark so use cases never need
// to know which store produced it. Only DB failures are logged here.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := KindDBFailure
	if len(kind) > 0 {
		k = kind[0]
	}

	if k == KindDBFailure {
		logArgs := []any{slog.String("kind", string(k))}
		if err != nil {
			logArgs = append(logArgs, slog.String("error", err.Error()))
		}
		slog.Error("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return errs.Mark(RepositoryError{Kind: k, msg: msg, err: err}, taxonomyOf(k))
}

// WrapDomainErr wraps a persistence error around a domain sentinel so both
// the sentinel and its taxonomy mark survive.
func WrapDomainErr(sentinel error, msg string, err error, kind RepositoryErrorKind) error {
	repoErr := WrapRepoErr(msg, err, kind)
	return errs.Mark(repoErr, sentinel)
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func taxonomyOf(kind RepositoryErrorKind) error {
	switch kind {
	case KindNotFound:
		return errs.ErrNotFound
	case KindDuplicateKey, KindConflict:
		return errs.ErrConflict
	default:
		return errs.ErrInfrastructure
	}
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindConflict           RepositoryErrorKind = "CONFLICT"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
)
