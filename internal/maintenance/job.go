// Package maintenance runs one-shot upkeep jobs over the order queue. Jobs
// are triggered by an operator or an outside scheduler through queuectl;
// nothing here runs on a timer.
package maintenance

import "context"

// Job is one unit of maintenance. Run returns a one-line summary for the
// operator.
type Job interface {
	Name() string
	Run(ctx context.Context) (string, error)
}

// Registry keeps jobs in registration order.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register ignores nil jobs.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

// Lookup finds a job by name.
func (r *Registry) Lookup(name string) (Job, bool) {
	for _, job := range r.jobs {
		if job.Name() == name {
			return job, true
		}
	}
	return nil, false
}
