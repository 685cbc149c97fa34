/*
Package x contains some standard extensions

Extensions implement common functionality as Handlers and
Decorators. The helpers in this package are shared between
them.
*/
package x
