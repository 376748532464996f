// Package alert provides the notification facade: a small API for raising
// success, error, warning, info, confirmation, custom and loading popups with
// one fixed visual policy.
//
// The facade builds one configuration record per call and hands it to an
// injected Renderer. It keeps no state of its own; the renderer owns the
// single on-screen slot.
//
//	f := alert.New(renderer)
//	_ = f.ShowSuccess(ctx, "Saved")
//
//	d, _ := f.ShowConfirm(ctx, "Delete?", "This cannot be undone")
//	out, _ := d.Wait(ctx)
//	if out.IsConfirmed() {
//		// delete
//	}
package alert
