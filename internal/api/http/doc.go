// Package http provides the panel's JSON API on top of gin.
//
// Every response carries a "success" flag; failures add an "error" message
// and a status derived from the provider error (see statusFor). Mutating
// file operations run detached from the client connection and are bounded
// by the configured operation timeout instead.
//
// Endpoints:
//   - Health: / and /health
//   - Files: /api/files, /api/files/{info,search,download,clipboard}
//     and POST /api/files/{read,write,create,delete,rename,copy,cut,paste,
//     clipboard/clear,duplicate,move,compress,extract,upload}
//   - System (optional): /api/system/info, /api/packages,
//     /api/packages/{install,remove}, /api/ping
//
// Example Usage:
//
//	handlers := http.NewHandlers(manager, provider, metrics, http.Options{Logger: logger})
//	http.RegisterRoutes(router, handlers)
package http
