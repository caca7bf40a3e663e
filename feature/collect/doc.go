// Package collect pages through a remote catalogue for one resolved alias.
//
// A Collector maps alias sources to Remote implementations and caps every
// run with the entity limit policy. Collect returns a Cursor that fetches one
// page per NextPage call, at most PageLimit records at a time and never more
// than the cap in total. Once stopped, the cursor reports why through
// Reason: the remote ran out, the cap was reached, the remote failed or the
// context was cancelled.
//
// Remote failures are surfaced as *RemoteError and are not retried here;
// retrying is the remote's business.
package collect
