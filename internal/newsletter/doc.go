// Package newsletter builds and delivers the daily menu email of an outlet.
//
// A run checks the SMTP settings, loads the outlet menu and its subscribers,
// asks a generative model to format the menu, renders the email and submits
// it once with every subscriber in Bcc. Preview performs the same steps
// without the submission.
package newsletter
