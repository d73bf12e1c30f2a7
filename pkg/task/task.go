/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

type TaskFn = func(Group) error

type Group interface {
	Ctx() context.Context
	Cancel()
	GoFn(name string, fn TaskFn)
}

type Waiter interface {
	Wait() error
}

// TaskManager runs named tasks on their own goroutines. The first task to
// fail cancels the context shared by the others.
type TaskManager struct {
	ctx    context.Context
	cancel context.CancelFunc

	waitGroup sync.WaitGroup

	mutex sync.Mutex
	err   error
}

func NewTaskManager(ctx context.Context) *TaskManager {
	ctx, cancel := context.WithCancel(ctx)

	return &TaskManager{
		ctx:    ctx,
		cancel: cancel,
	}
}

func (group *TaskManager) Ctx() context.Context {
	return group.ctx
}

func (group *TaskManager) Cancel() {
	group.cancel()
}

// Wait blocks until every task has returned and joins their errors, each
// prefixed with the task name.
func (group *TaskManager) Wait() error {
	group.waitGroup.Wait()
	group.cancel()

	group.mutex.Lock()
	defer group.mutex.Unlock()

	return group.err
}

func (group *TaskManager) GoFn(name string, task TaskFn) {
	group.waitGroup.Add(1)

	go group.run(name, task)
}

func (group *TaskManager) run(name string, task TaskFn) {
	defer group.waitGroup.Done()

	err := task(group)
	if err == nil {
		return
	}

	logger.Debugf("task %s failed, %v", name, err)
	group.cancel()

	group.mutex.Lock()
	group.err = errors.Join(group.err, fmt.Errorf("%s: %w", name, err))
	group.mutex.Unlock()
}
