package control

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/thelolagemann/galvo/pkg/log"
)

// ErrUnknownControl is reported for tokens whose key is not registered.
var ErrUnknownControl = errors.New("control: unknown control")

const (
	tokenSeparator = " "
	fieldSeparator = ":"
)

// Registry maps control keys to their targets. Its shape is fixed when it
// is created; only the targets themselves change afterwards, so it can be
// read from any number of goroutines without locking.
type Registry struct {
	targets map[string]Target
	keys    []string
	log     log.Logger
}

// NewRegistry returns a Registry over a copy of targets.
func NewRegistry(targets map[string]Target, logger log.Logger) *Registry {
	r := &Registry{
		targets: make(map[string]Target, len(targets)),
		log:     logger,
	}
	for k, t := range targets {
		r.targets[k] = t
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)
	if r.log == nil {
		r.log = log.NewNullLogger()
	}
	return r
}

// Lookup returns the target registered under key.
func (r *Registry) Lookup(key string) (Target, bool) {
	t, ok := r.targets[key]
	return t, ok
}

// Keys returns every registered key in sorted order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Dispatch applies every token in batch in order. Unknown keys are logged
// and skipped. The returned error aggregates every token that failed, and
// is nil when the whole batch applied.
func (r *Registry) Dispatch(batch string) error {
	var result *multierror.Error
	for _, token := range strings.Split(batch, tokenSeparator) {
		if token == "" {
			continue
		}
		if err := r.apply(token); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Registry) apply(token string) error {
	fields := strings.Split(token, fieldSeparator)
	target, ok := r.targets[fields[0]]
	if !ok {
		r.log.Errorf("unknown control %s", fields[0])
		return fmt.Errorf("%w %q", ErrUnknownControl, fields[0])
	}
	if err := target.Update(fields[1:]); err != nil {
		r.log.Errorf("control %s: %v", token, err)
		return fmt.Errorf("%s: %w", token, err)
	}
	return nil
}
