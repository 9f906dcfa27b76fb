// Package testutil adds test lifecycle helpers on top of component.Component.
//
// Infrastructure packages ship an in-memory TestComponent under their own
// testutil subpackage (miniredis for redis, in-memory SQLite for the
// database). Tests start them through T so they are stopped automatically:
//
//	func TestLogin(t *testing.T) {
//	    rc := redistest.NewComponent()
//	    testutil.T(t).Setup(rc)
//	    ...
//	    testutil.T(t).Reset(rc)
//	}
package testutil
