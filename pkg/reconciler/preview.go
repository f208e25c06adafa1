package reconciler

import "github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"

// PreviewEnvironment shows env on the Visual Marker without committing it.
// It returns false, changing nothing, when the view is not themed or env is
// unknown.
func (r *Reconciler) PreviewEnvironment(env models.Environment) bool {
	if !env.Valid() || !r.deps.Marker.Apply(env) {
		return false
	}
	r.mu.Lock()
	r.previewing = true
	r.mu.Unlock()
	r.log.Debug().Str("environment", string(env)).Msg("previewing environment")
	return true
}

// ResetPreview restores the Visual Marker to the committed theme environment.
// Without an active preview it does nothing.
func (r *Reconciler) ResetPreview() {
	r.mu.Lock()
	was := r.previewing
	r.previewing = false
	r.mu.Unlock()
	if !was {
		return
	}

	committed := r.deps.Theme.Environment()
	if committed.IsZero() {
		committed = r.cfg.DefaultEnvironment
	}
	r.deps.Marker.Apply(committed)
}

// HasPreviewedOnly reports whether the marker shows an uncommitted preview.
func (r *Reconciler) HasPreviewedOnly() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.previewing
}

func (r *Reconciler) endPreview() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previewing = false
}
