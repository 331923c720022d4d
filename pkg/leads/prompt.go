package leads

import (
	"fmt"
	"strings"

	"airtech/pkg/domain"
)

// reportSchemaDescription is sent inside the prompt as a reference for the
// expected output. The API request carries no enforced schema; compliance is
// instructional only, so the response parser stays defensive.
const reportSchemaDescription = `
[
  {
    "report": {
      "companyName": "The lead company's name.",
      "businessSector": "The company's line of business.",
      "keyContact": "A key contact person, such as 'Head of Marketing' or 'CEO'.",
      "contactNumber": "The main phone number, taken DIRECTLY from the Google Maps listing. If there is none, leave it blank.",
      "companyWebsite": "The official company website, EXACTLY as it appears on the Google Maps listing. If the listing has no website, leave this field blank.",
      "digitalStatus": "A short read on the lead's digital presence, e.g. 'Basic chatbot on the website' or 'High engagement on Instagram'.",
      "emailContact": "The public contact email, ONLY if it is visible on the Google Maps listing. If it does not exist, leave this field blank. DO NOT INVENT ONE."
    },
    "email": "The full text of the prospecting email, hyper-personalized for the lead."
  }
]
`

func approachInstructions(profile domain.CompanyProfile) string {
	switch profile.EmailApproach {
	case domain.ApproachAggressive:
		return `
**Email tone:** Aggressive and direct.
**Guideline:** Create urgency or FOMO. Open with a strong statement that points at a pain or a loss. Example: "You are losing sales by not doing X..." or "Your competitor is doing Y — are you?". The goal is to jolt the reader into a fast reply.
`
	case domain.ApproachFriendly:
		return `
**Email tone:** Friendly and casual.
**Guideline:** Build rapport. Use personal, non-corporate language. You may genuinely mention something you noticed in their "digital status". The goal is to start a conversation, not to hard-sell. Example: "Hi [Name], I saw your post about Z and found it really interesting...".
`
	case domain.ApproachProfessional:
		return `
**Email tone:** Professional and value-focused.
**Guideline:** Be formal but concise. Get straight to the value the "core solution" can add to the lead's business. Use data or a clear value proposition. The goal is to establish credibility and book a meeting based on business benefits.
`
	case domain.ApproachCustom:
		return fmt.Sprintf(`
**Email tone:** Customized by the user.
**Guideline:** Follow EXACTLY the instructions below to write the email:
"%s"
`, profile.CustomEmailPrompt)
	default:
		return ""
	}
}

// BuildPrompt renders the full instruction payload for one company profile.
// It is deterministic: the same profile always yields the same text.
func BuildPrompt(profile domain.CompanyProfile) string {
	var socialProfiles strings.Builder
	if profile.LinkedInProfile != "" {
		fmt.Fprintf(&socialProfiles, "\n* **LinkedIn profile:** %s", profile.LinkedInProfile)
	}
	if profile.TwitterProfile != "" {
		fmt.Fprintf(&socialProfiles, "\n* **Twitter (X) profile:** %s", profile.TwitterProfile)
	}

	audienceLine := ""
	if profile.TargetAudience != "" {
		audienceLine = fmt.Sprintf("* **Specific audience (additional focus):** Find companies matching this description: %q.\n", profile.TargetAudience)
	}

	return fmt.Sprintf(`
You are an AI agent specialized in B2B prospecting, focused on ABSOLUTE data accuracy.

**UNBREAKABLE RULES:**
1.  **SINGLE SOURCE OF DATA:** Your ONLY source of contact information (website, phone, email) MUST be the Google Maps search result.
2.  **INVENT NOTHING:** It is strictly FORBIDDEN to invent, guess or fabricate any information. If a piece of data (e.g. website or email) is not CLEARLY listed on the company's Google Maps profile, the corresponding JSON field MUST be an empty string "".
3.  **ACCURACY IS EVERYTHING:** A blank field is INFINITELY better than a false value. Your performance is measured by the truthfulness of the data, not by how many fields are filled.

**Hiring company profile:**
* **Business sector:** %s
* **Company size:** %s
* **Core solution:** %s
* **Main interaction channels:** %s%s

**Prospecting criteria (ICP - Ideal Customer Profile):**
* **Ideal customer profile (description):** %s
* **Focus country:** %s. **CRITICAL REQUIREMENT:** Every lead MUST be from this country. Phone numbers must match this country's dialing code.
%s
**Your task:**
1.  **Use Google Maps search:** Find 10 companies that PERFECTLY match ALL the prospecting criteria, using the Google Maps search tool as your primary and ONLY source for contact data.
2.  **Build a report (WITH REAL DATA):** For each company found, fill in the report following the UNBREAKABLE RULES. Accuracy of the website, phone and email is crucial. If the data is not on the Google Maps listing, leave the field as an empty string "".
3.  **Write a hyper-personalized email:** For each lead, write a prospecting email following the guidelines below. The email must:
    * Be short, direct and relevant.
    * Connect the hiring company's "core solution" to a specific need or pain of the lead.
    * Mention the lead's "digital status" in a smart way to show you did your research.
    * Have a clear call to action suggesting a short, results-focused conversation.

**Prospecting email guidelines:**
%s
**Response format:**
Produce the response EXACTLY as a JSON array, with no additional text before or after the array. Follow the structure below:
%s
`,
		profile.Sector,
		profile.Size,
		profile.CoreSolution,
		profile.Channels,
		socialProfiles.String(),
		profile.ICP,
		profile.Country,
		audienceLine,
		approachInstructions(profile),
		reportSchemaDescription,
	)
}
