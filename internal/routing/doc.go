// Package routing decides, from a path, whether traffic must be tunneled
// through the relay versus handled directly, and which paired host the
// current page belongs to.
package routing
