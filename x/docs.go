/*
Package x contains the standard extensions.

Extensions implement common functionality (Handler, Decorator,
Initializer, etc.) and can be combined together to construct an
application. The authentication helpers in this package are shared by
all of them so that an extension never hard-codes how a signature was
verified.
*/
package x
