package metrics

import "sync"

// metricHolder groups every Histogram registered under one metric name.
// All of them must share the same DefinitionHash; they differ only in the
// concrete tag values (and therefore ID) attached to each Histogram.
type metricHolder struct {
	definitionHash MetricDefinitionHash
	description    string
	tagNames       []string

	byID  map[MetricID]*Histogram
	order []MetricID
}

// Registry is the process-wide (or per-component) set of registered
// histograms, keyed first by name then by tag-value identity. Every lookup
// takes the mutex briefly; a missing holder or Histogram is built outside
// the lock and re-checked under it before insertion (double-checked
// locking, as in the teacher's Set).
type Registry struct {
	mu    sync.Mutex
	m     map[string]*metricHolder
	names []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*metricHolder)}
}

// GetOrRegisterHistogram returns the Histogram identified by description,
// creating it (and its parent holder, if this is the first tag
// combination seen under this name) if necessary.
//
// Registering the same name twice with a different description or tag
// names is a contract violation and returns MetricAlreadyRegDifferentlyError
// rather than panicking: registration happens at startup and in
// request-handling code alike, and the spec treats it as a recoverable
// error (§7), not a programmer bug to crash on.
func (r *Registry) GetOrRegisterHistogram(description *MetricDescription, settings HistogramSettings) (*Histogram, error) {
	r.mu.Lock()
	holder, ok := r.m[description.Name]
	r.mu.Unlock()

	if !ok {
		newHolder := &metricHolder{
			definitionHash: description.DefinitionHash,
			description:    description.Description,
			tagNames:       description.TagNames,
			byID:           make(map[MetricID]*Histogram),
		}
		r.mu.Lock()
		holder, ok = r.m[description.Name]
		if !ok {
			holder = newHolder
			r.m[description.Name] = holder
			r.names = append(r.names, description.Name)
		}
		r.mu.Unlock()
	}

	if holder.definitionHash != description.DefinitionHash {
		return nil, &MetricAlreadyRegDifferentlyError{Name: description.Name}
	}

	r.mu.Lock()
	h, ok := holder.byID[description.ID]
	if ok {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	h, err := newHistogram(description, settings)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := holder.byID[description.ID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	holder.byID[description.ID] = h
	holder.order = append(holder.order, description.ID)
	r.mu.Unlock()

	return h, nil
}

// Histograms returns every registered Histogram in deterministic order:
// grouped by name in first-registration order, and within a name by the
// order each distinct tag combination was first registered.
func (r *Registry) Histograms() []*Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Histogram, 0, len(r.m))
	for _, name := range r.names {
		holder := r.m[name]
		for _, id := range holder.order {
			out = append(out, holder.byID[id])
		}
	}
	return out
}
