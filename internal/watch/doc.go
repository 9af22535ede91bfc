// Package watch reports workspace file-system changes to the editing core.
//
// A Watcher walks the workspace root, watches every directory that is not
// ignored, and turns fsnotify events into core.FileSystemChanged
// notifications. A rename followed by a create within a short window is
// reported as one rename. The repository HEAD file is watched as well, and a
// branch switch is reported as core.HeadDidChange.
//
// The watcher only produces raw notifications; translation into domain
// events happens in the bridge like any other core notification.
package watch
