// Package testutil provides an httptest-backed server component.
//
//	srv := testutil.NewComponent()
//	srv.GinEngine().GET("/hello", handler)
//	testutil.T(t).Setup(srv)
//	resp, _ := srv.Client().Get(srv.BaseURL() + "/hello")
package testutil
