package player

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
	"github.com/lowaak/smart-trainer/workout-runner/internal/go_func_utils"
)

// SnapshotSource publishes engine snapshots
type SnapshotSource interface {
	ListenToSnapshots(ch chan<- engine.Snapshot) func()
}

// BaseView wires model and engine events into a ViewImpl
type BaseView struct {
	impl       ViewImpl
	model      *Model
	controller *Controller
	snapshots  SnapshotSource

	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	unlistenFlash func()
	shutdownOnce  sync.Once
	logger        *log.Logger
}

// NewBaseViewArg holds the arguments for NewBaseView
type NewBaseViewArg struct {
	Impl       ViewImpl
	Model      *Model
	Controller *Controller
	Snapshots  SnapshotSource
	Logger     *log.Logger
}

// NewBaseView initializes the impl and starts the listeners
func NewBaseView(args NewBaseViewArg) *BaseView {
	if args.Logger == nil {
		panic("BaseView: logger cannot be nil")
	}
	if args.Impl == nil {
		panic("BaseView: impl cannot be nil")
	}
	if args.Model == nil {
		panic("BaseView: model cannot be nil")
	}
	if args.Controller == nil {
		panic("BaseView: controller cannot be nil")
	}
	if args.Snapshots == nil {
		panic("BaseView: snapshot source cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseView{
		impl:       args.Impl,
		model:      args.Model,
		controller: args.Controller,
		snapshots:  args.Snapshots,
		ctx:        ctx,
		cancel:     cancel,
		logger:     args.Logger,
	}

	args.Impl.Initialize(args.Controller)
	args.Impl.SetupKeyboardHandlers(args.Controller)

	base.setupEventListeners()
	return base
}

// Run blocks until the view exits
func (base *BaseView) Run() error {
	return base.impl.Run()
}

// Shutdown stops the listeners
func (base *BaseView) Shutdown() {
	base.shutdownOnce.Do(func() {
		base.unlistenFlash()
		base.cancel()
		base.wg.Wait()
	})
}

func (base *BaseView) draw() {
	if err := base.impl.Draw(); err != nil {
		base.logger.Printf("BaseView: Error drawing: %v", err)
	}
}

func (base *BaseView) setupEventListeners() {
	logChan := make(chan string, 1)
	logUnregister := base.model.ListenToLog(logChan)
	base.wg.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.wg.Done()
		defer logUnregister()
		for {
			select {
			case <-base.ctx.Done():
				return
			case _, ok := <-logChan:
				if !ok {
					return
				}
				base.updateLogDisplay()
				base.draw()
			}
		}
	})

	snapChan := make(chan engine.Snapshot, 1)
	snapUnregister := base.snapshots.ListenToSnapshots(snapChan)
	base.wg.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.wg.Done()
		defer snapUnregister()
		for {
			select {
			case <-base.ctx.Done():
				return
			case snap, ok := <-snapChan:
				if !ok {
					return
				}
				base.impl.UpdateSnapshot(snap)
				base.draw()
			}
		}
	})

	closeChan := make(chan struct{}, 1)
	closeUnregister := base.model.ListenToCloseApplication(closeChan)
	base.wg.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.wg.Done()
		defer closeUnregister()
		select {
		case <-base.ctx.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			base.impl.Stop()
		}
	})

	base.unlistenFlash = base.model.ListenToFlash(func(token feedback.FlashToken) {
		base.impl.ShowFlash(token)
		base.draw()
	})
}

func (base *BaseView) updateLogDisplay() {
	height := base.impl.GetLogViewHeight()
	if height <= 0 {
		return
	}
	base.impl.ClearLogView()
	for _, line := range base.model.GetLogTail(height) {
		if err := base.impl.WriteLogLine(line); err != nil {
			base.logger.Printf("BaseView: Error writing to log view: %v", err)
		}
	}
}
