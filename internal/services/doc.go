// Package services defines the error taxonomy shared by pipeline
// collaborators and the monitor loop.
//
// Sentinel markers classify failures into the handling buckets the monitor
// cares about: transient (defer to the next cycle), external tool (record a
// failed outcome and continue), storage (abort the cycle, keep the daemon
// alive), and configuration/validation (operator-visible defects).
package services
