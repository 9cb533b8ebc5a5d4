package app

import (
	"fmt"
	"strings"

	"repairbot/core/telegram/format"
	"repairbot/internal/catalog"
	"repairbot/internal/dialog"
	"repairbot/internal/order"
	"repairbot/internal/session"
)

// Reply-keyboard menu labels. The text router matches these verbatim.
const (
	btnNewOrder = "📋 New Repair Order"
	btnMyOrders = "📊 My Orders"
	btnHelp     = "❓ Help"
	btnContact  = "📞 Contact"
)

const welcomeText = `👋 Welcome to Phone Repair Service Bot!

I can help you:
📱 Order a phone repair
🔍 Track your order status
💬 Get support

Select an action:`

const helpText = `📋 *Available Commands:*

/start - Start the bot
/help - Get help
/services - List services
/orders - My orders
/contact - Contact information

*How to order repair:*
1. Press "📋 New Repair Order"
2. Choose service type
3. Enter your phone number
4. Enter device model
5. Describe the problem
6. Confirm order

⏱️ *Processing time:* 1-3 hours
📍 *Address:* 123 Main St, Office 205`

const contactText = `📞 *Contact Info:*

📱 Phone: +7 (999) 123-45-67
💬 Telegram: @phone_repair_service
📧 Email: support@phone-repair.ru
📍 Address: 123 Main St, Office 205

⏰ *Working Hours:*
Mon-Fri: 10:00 - 19:00
Sat: 11:00 - 18:00
Sun: Closed`

const (
	chooseServiceText  = "🔧 Select repair type:"
	askDeviceText      = "✅ Thank you!\n\n📱 Enter your device model (e.g., iPhone 12, Samsung Galaxy A51):"
	askProblemText     = "✅ Got it!\n\n🔍 Describe the problem (max 200 characters):"
	orderCancelledText = "❌ Order cancelled."
	noOrdersText       = "📭 You have no orders yet"
	unknownText        = "❓ Unknown command. Use menu buttons or /help"
	sessionResetText   = "⚠️ Something went wrong with your order. Please start again with \"📋 New Repair Order\"."
	internalErrorText  = "⚠️ Service is temporarily unavailable, please try again."
	documentsText      = "📎 Documents are not supported. Please send a text message."
)

// Rejection re-prompts keyed by the dialog error class.
const (
	rejectedUnknownServiceText = "❌ Unknown service. Please pick one from the menu:"
	rejectedEmptyInputText     = "❌ Please send a non-empty text message:"
	rejectedProblemTooLongText = "❌ Description too long. Max 200 characters:"
	rejectedUnexpectedText     = "❓ Unexpected input. Use the menu buttons or /help"
)

func formatPrice(minor int64) string {
	if minor <= 0 {
		return "On request"
	}
	return fmt.Sprintf("%d RUB", minor/100)
}

// escapeMD sanitizes user-entered text before it is embedded in a Markdown
// message, so an asterisk in a problem description cannot break formatting.
func escapeMD(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return escaped
}

func askPhoneText(svc *catalog.Service) string {
	name := ""
	if svc != nil {
		name = svc.DisplayName
	}
	return fmt.Sprintf("✅ Selected: %s\n\n📱 Enter your phone number:", name)
}

func servicesText(services []catalog.Service) string {
	var b strings.Builder
	b.WriteString("🔧 *Our Services:*\n\n")
	for _, svc := range services {
		if svc.PriceMinor <= 0 {
			continue
		}
		fmt.Fprintf(&b, "%s - %s\n", svc.DisplayName, formatPrice(svc.PriceMinor))
	}
	return b.String()
}

func summaryText(draft session.Draft) string {
	svcName, price := "", int64(0)
	if draft.Service != nil {
		svcName = draft.Service.DisplayName
		price = draft.Service.PriceMinor
	}
	return fmt.Sprintf(`📋 *Order Confirmation:*

🔧 Service: %s
💰 Price: %s
📱 Phone: %s
📱 Device: %s
🔍 Problem: %s

✅ Is everything correct?`,
		svcName, formatPrice(price), escapeMD(draft.Phone), escapeMD(draft.Device), escapeMD(draft.Problem))
}

func orderCreatedText(o order.Order) string {
	return fmt.Sprintf("✅ *Order Created Successfully!*\n\n"+
		"🎟️ Order Number: `%s`\n"+
		"💰 Total: %s\n"+
		"📍 Status: %s\n\n"+
		"⏱️ Expected response time: 30-60 minutes\n"+
		"📍 Address: 123 Main St, Office 205\n\n"+
		"Thank you for using our service! 🙏",
		o.ID, formatPrice(o.Service.PriceMinor), o.Status)
}

func ordersListText(orders []order.Order) string {
	var b strings.Builder
	b.WriteString("📋 *Your Orders:*\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "%s\n📱 Device: %s\n🔧 Service: %s\n📊 Status: %s\n⏰ Date: %s\n───────────────────\n",
			o.ID, escapeMD(o.Device), o.Service.DisplayName, o.Status, o.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func rejectionText(reason error) string {
	switch v := reason.(type) {
	case *dialog.UnknownServiceError:
		return rejectedUnknownServiceText
	case *dialog.ValidationError:
		if v.Field == "problem" && strings.Contains(v.Reason, "at most") {
			return rejectedProblemTooLongText
		}
		return rejectedEmptyInputText
	case *dialog.UnexpectedEventError:
		return rejectedUnexpectedText
	default:
		return rejectedUnexpectedText
	}
}
