// Package probe checks the existence of external URLs.
//
// Probing is opportunistic: only a bounded sample of external references is
// checked, each with a short timeout, and every failure is reported as a
// best-effort finding because network answers are not deterministic. A
// transient outage can look like a broken link, and some servers reject the
// lightweight request used to ask.
//
// Probes may optionally be routed through a SOCKS5 or HTTP proxy.
package probe
