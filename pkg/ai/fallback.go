package ai

import (
	"context"
	"log"
	"strings"
)

// CannedGenerator returns a canned template picked by keywords in the
// prompt. It never fails, which makes it both the offline provider and the
// safety net behind a real one.
type CannedGenerator struct{}

func NewCannedGenerator() *CannedGenerator {
	return &CannedGenerator{}
}

func (g *CannedGenerator) GenerateReplyTemplate(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)

	switch {
	case strings.Contains(lower, "reject") || strings.Contains(lower, "decline"):
		return rejectionTemplate, nil
	case strings.Contains(lower, "welcome") || strings.Contains(lower, "onboard"):
		return welcomeTemplate, nil
	case strings.Contains(lower, "support") || strings.Contains(lower, "help"):
		return supportTemplate, nil
	case strings.Contains(lower, "meeting") || strings.Contains(lower, "schedule"):
		return meetingTemplate, nil
	default:
		return genericTemplate, nil
	}
}

// FallbackGenerator tries the primary provider and degrades to the canned
// set on any error, so the generation endpoint can always answer with a
// usable template.
type FallbackGenerator struct {
	primary ReplyGenerator
	canned  *CannedGenerator
}

func NewFallbackGenerator(primary ReplyGenerator) *FallbackGenerator {
	return &FallbackGenerator{
		primary: primary,
		canned:  NewCannedGenerator(),
	}
}

func (g *FallbackGenerator) GenerateReplyTemplate(ctx context.Context, prompt string) (string, error) {
	if g.primary != nil {
		html, err := g.primary.GenerateReplyTemplate(ctx, prompt)
		if err == nil {
			return html, nil
		}
		log.Printf("[AI] Template generation failed, using canned template: %v", err)
	}
	return g.canned.GenerateReplyTemplate(ctx, prompt)
}

const rejectionTemplate = `
<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{sender_name}},</p>
  <p>Thank you for reaching out to us regarding <strong>{{subject}}</strong>.</p>
  <p>We appreciate your interest, but unfortunately, we are unable to proceed with your request at this time. We received a high volume of inquiries and had to make some difficult decisions.</p>
  <p>We will keep your information on file for future opportunities.</p>
  <p>Best regards,</p>
  <p><strong>The Team</strong></p>
</div>`

const welcomeTemplate = `
<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <h2 style="color: #4f46e5;">Welcome to the Community, {{sender_name}}!</h2>
  <p>We are thrilled to have you on board.</p>
  <p>Here are a few next steps to get you started:</p>
  <ul>
    <li>Complete your profile</li>
    <li>Check out our documentation</li>
    <li>Join our community chat</li>
  </ul>
  <p>If you have any questions, feel free to reply to this email.</p>
  <p>Cheers,</p>
  <p><strong>The Team</strong></p>
</div>`

const supportTemplate = `
<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{sender_name}},</p>
  <p>Thanks for contacting support. We have received your ticket regarding: <strong>{{subject}}</strong>.</p>
  <p>Our team is reviewing your issue and will get back to you within 24 hours.</p>
  <p>Thanks for your patience!</p>
  <p><strong>Customer Support</strong></p>
</div>`

const meetingTemplate = `
<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{sender_name}},</p>
  <p>Thanks for the meeting request.</p>
  <p>I'd be happy to chat about {{subject}}. Please feel free to book a time that works for you using my calendar link.</p>
  <p>Looking forward to it!</p>
  <p>Best,</p>
  <p><strong>Your Name</strong></p>
</div>`

const genericTemplate = `
<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{sender_name}},</p>
  <p>Thank you for your email about <strong>{{subject}}</strong>.</p>
  <p>I am currently away from my inbox and will get back to you as soon as possible.</p>
  <p>Please let me know if you have any further questions.</p>
  <p>Best,</p>
  <p><strong>Your Name</strong></p>
</div>`
