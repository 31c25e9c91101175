package bridge

import (
	"context"

	"github.com/muurk/polfunbox/internal/app"
)

// Remote receives what the bridge decodes. Implementations must be safe
// to call from connection goroutines.
type Remote interface {
	Key(ev app.KeyEvent)
	Back()
	DeviceInfo(ctx context.Context) (DeviceInfo, error)
}

// ControllerRemote drives an app.Controller through its event loop.
type ControllerRemote struct {
	controller *app.Controller
	dispatch   func(func())
}

// NewControllerRemote returns a Remote that queues every call onto the
// loop behind dispatch.
func NewControllerRemote(c *app.Controller, dispatch func(func())) *ControllerRemote {
	return &ControllerRemote{controller: c, dispatch: dispatch}
}

func (r *ControllerRemote) Key(ev app.KeyEvent) {
	r.dispatch(func() { r.controller.HandleKey(ev) })
}

func (r *ControllerRemote) Back() {
	r.dispatch(r.controller.Back)
}

// DeviceInfo reads the device code on the loop; it changes on restart.
func (r *ControllerRemote) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	ch := make(chan DeviceInfo, 1)
	r.dispatch(func() {
		p := r.controller.Platform()
		ch <- DeviceInfo{
			Type:       TypeDeviceInfo,
			DeviceCode: r.controller.DeviceCode(),
			Platform:   p.Name,
			Brand:      p.Brand,
		}
	})
	select {
	case info := <-ch:
		return info, nil
	case <-ctx.Done():
		return DeviceInfo{}, ctx.Err()
	}
}
