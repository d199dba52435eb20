package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lowkit/sqlrunner/server/apierror"
)

// ExecutionStatus represents the status of a submitted execution.
type ExecutionStatus string

const (
	ExecutionStatusPending  ExecutionStatus = "pending"
	ExecutionStatusRunning  ExecutionStatus = "running"
	ExecutionStatusSuccess  ExecutionStatus = "success"
	ExecutionStatusFailed   ExecutionStatus = "failed"
	ExecutionStatusCanceled ExecutionStatus = "canceled"
)

// Execution represents a submitted, running or completed query execution.
type Execution struct {
	Handle      string
	Status      ExecutionStatus
	Query       string
	CreatedOn   time.Time
	CompletedOn *time.Time
	Result      *Result
	Error       *apierror.QueryError
	cancelFunc  context.CancelFunc
}

// Registry tracks submitted executions by handle with thread safety.
type Registry struct {
	mu         sync.RWMutex
	executions map[string]*Execution
	ttl        time.Duration
}

// NewRegistry creates an execution registry. Completed executions are kept
// for ttl before cleanup.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		executions: make(map[string]*Execution),
		ttl:        ttl,
	}
	go r.cleanupLoop()
	return r
}

// Create registers a new pending execution and returns it.
func (r *Registry) Create(query string) *Execution {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec := &Execution{
		Handle:    uuid.NewString(),
		Status:    ExecutionStatusPending,
		Query:     query,
		CreatedOn: time.Now(),
	}
	r.executions[exec.Handle] = exec
	return exec
}

// Get retrieves an execution by handle.
func (r *Registry) Get(handle string) (*Execution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exec, ok := r.executions[handle]
	return exec, ok
}

// SetRunning marks an execution running and stores its cancel function.
func (r *Registry) SetRunning(handle string, cancelFunc context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec, ok := r.executions[handle]
	if !ok {
		return false
	}
	exec.Status = ExecutionStatusRunning
	exec.cancelFunc = cancelFunc
	return true
}

// SetResult records the result of a successful execution.
func (r *Registry) SetResult(handle string, result *Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec, ok := r.executions[handle]
	if !ok {
		return false
	}
	exec.Result = result
	exec.Status = ExecutionStatusSuccess
	now := time.Now()
	exec.CompletedOn = &now
	return true
}

// SetError records the error of a failed execution.
func (r *Registry) SetError(handle string, qerr *apierror.QueryError) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec, ok := r.executions[handle]
	if !ok {
		return false
	}
	exec.Error = qerr
	exec.Status = ExecutionStatusFailed
	now := time.Now()
	exec.CompletedOn = &now
	return true
}

// Cancel cancels a pending or running execution.
func (r *Registry) Cancel(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec, ok := r.executions[handle]
	if !ok {
		return fmt.Errorf("execution not found: %s", handle)
	}
	if exec.Status != ExecutionStatusRunning && exec.Status != ExecutionStatusPending {
		return fmt.Errorf("execution %s is not running (status: %s)", handle, exec.Status)
	}

	if exec.cancelFunc != nil {
		exec.cancelFunc()
	}
	exec.Status = ExecutionStatusCanceled
	now := time.Now()
	exec.CompletedOn = &now
	return nil
}

// Delete removes an execution from the registry.
func (r *Registry) Delete(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.executions, handle)
}

// cleanupLoop periodically removes expired executions.
func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for range ticker.C {
		r.cleanup()
	}
}

// cleanup removes executions completed for longer than the TTL.
func (r *Registry) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for handle, exec := range r.executions {
		if exec.CompletedOn != nil && now.Sub(*exec.CompletedOn) > r.ttl {
			delete(r.executions, handle)
		}
	}
}
