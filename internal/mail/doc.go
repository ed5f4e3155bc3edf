// Package mail prepares the outgoing message for a published document.
//
// Nothing is sent from here. The message is turned into a web-mail compose
// URL and handed to an Opener, which launches the platform browser or simply
// prints the link.
package mail
