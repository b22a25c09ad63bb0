package monitor

import (
	"sync"
)

// WorkerPool executa as verificações de um ciclo com concorrência limitada
type WorkerPool struct {
	workers  int
	jobs     chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWorkerPool cria um pool com o número de workers informado (mínimo 1)
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	wp := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), workers*2),
	}

	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobs {
		job()
	}
}

// Submit enfileira um job; bloqueia enquanto a fila estiver cheia
func (wp *WorkerPool) Submit(job func()) {
	wp.jobs <- job
}

// Wait fecha a fila e espera todos os jobs enfileirados terminarem
func (wp *WorkerPool) Wait() {
	wp.stopOnce.Do(func() {
		close(wp.jobs)
	})
	wp.wg.Wait()
}
