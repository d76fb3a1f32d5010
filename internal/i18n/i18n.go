// Package i18n resolves user-facing messages for domain error keys.
// Spanish is the default language; English is available via Accept-Language.
package i18n

import "strings"

const defaultLang = "es"

var messages = map[string]map[string]string{
	"es": {
		"insufficient_stock":    "Stock insuficiente para realizar la salida",
		"credit_limit_exceeded": "La factura excede el límite de crédito del cliente",
		"unsupported_operation": "Operación no soportada",
		"not_found":             "Registro no encontrado",

		"payment_no_client":           "La factura no tiene cliente asignado",
		"payment_not_credit_sale":     "Solo las ventas al crédito admiten pagos",
		"payment_already_paid":        "La factura ya está pagada",
		"payment_non_positive_total":  "El total de la factura debe ser mayor que cero",

		"invoice_no_number":           "La factura requiere un número",
		"invoice_no_client":           "La factura requiere un cliente",
		"invoice_no_lines":            "La factura debe tener al menos un detalle",
		"invoice_non_positive_total":  "El total de la factura debe ser mayor que cero",
		"invoice_client_no_credit":    "El cliente no tiene crédito habilitado",
		"invoice_bad_sale_type":       "El tipo de venta debe ser CASH o CREDIT",
		"invoice_paid_immutable":      "La factura está pagada y no puede modificarse",

		"line_no_product":             "El detalle requiere un producto",
		"line_non_positive_quantity":  "La cantidad debe ser mayor que cero",
		"line_non_positive_price":     "El precio unitario debe ser mayor que cero",
		"line_below_purchase_price":   "El precio de venta no puede ser menor que el precio de compra",

		"movement_no_product":            "El movimiento requiere un producto",
		"movement_non_positive_quantity": "La cantidad del movimiento debe ser mayor que cero",

		"client_missing_identity":          "El cliente requiere código y nombre",
		"client_contact_required":          "El cliente requiere teléfono o correo electrónico",
		"client_credit_disabled_with_debt": "No se puede deshabilitar el crédito con saldo pendiente",
		"client_non_positive_credit_limit": "El límite de crédito debe ser mayor que cero",
		"client_balance_exceeds_limit":     "El saldo pendiente excede el límite de crédito",

		"category_missing_identity": "La categoría requiere código y nombre",

		"supplier_missing_identity":          "El proveedor requiere código y razón social",
		"supplier_non_positive_credit_limit": "El límite de crédito del proveedor debe ser mayor que cero",

		"product_missing_identity":    "El producto requiere código, nombre y unidad",
		"product_negative_price":      "Los precios del producto no pueden ser negativos",
		"product_sale_below_purchase": "El precio de venta no puede ser menor que el precio de compra",

		"user_missing_credentials": "El usuario requiere nombre de usuario y contraseña",
		"bad_credentials":          "Usuario o contraseña incorrectos",
	},
	"en": {
		"insufficient_stock":    "Insufficient stock for this outgoing movement",
		"credit_limit_exceeded": "The invoice exceeds the client's credit limit",
		"unsupported_operation": "Unsupported operation",
		"not_found":             "Record not found",

		"payment_no_client":           "The invoice has no client assigned",
		"payment_not_credit_sale":     "Only credit sales accept payments",
		"payment_already_paid":        "The invoice is already paid",
		"payment_non_positive_total":  "The invoice total must be greater than zero",

		"invoice_no_number":           "The invoice requires a number",
		"invoice_no_client":           "The invoice requires a client",
		"invoice_no_lines":            "The invoice must have at least one line",
		"invoice_non_positive_total":  "The invoice total must be greater than zero",
		"invoice_client_no_credit":    "The client does not have credit enabled",
		"invoice_bad_sale_type":       "Sale type must be CASH or CREDIT",
		"invoice_paid_immutable":      "The invoice is paid and cannot be modified",

		"line_no_product":             "The line requires a product",
		"line_non_positive_quantity":  "Quantity must be greater than zero",
		"line_non_positive_price":     "Unit price must be greater than zero",
		"line_below_purchase_price":   "Sale price cannot be below the purchase price",

		"movement_no_product":            "The movement requires a product",
		"movement_non_positive_quantity": "The movement quantity must be greater than zero",

		"client_missing_identity":          "The client requires a code and a name",
		"client_contact_required":          "The client requires a phone or an email",
		"client_credit_disabled_with_debt": "Credit cannot be disabled while a balance is outstanding",
		"client_non_positive_credit_limit": "The credit limit must be greater than zero",
		"client_balance_exceeds_limit":     "The outstanding balance exceeds the credit limit",

		"category_missing_identity": "The category requires a code and a name",

		"supplier_missing_identity":          "The supplier requires a code and a legal name",
		"supplier_non_positive_credit_limit": "The supplier credit limit must be greater than zero",

		"product_missing_identity":    "The product requires a code, a name, and a unit",
		"product_negative_price":      "Product prices cannot be negative",
		"product_sale_below_purchase": "The sale price cannot be below the purchase price",

		"user_missing_credentials": "The user requires a username and a password",
		"bad_credentials":          "Invalid username or password",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(tag, "-;"); i >= 0 {
			tag = tag[:i]
		}
		if _, ok := messages[tag]; ok {
			return tag
		}
	}
	return defaultLang
}

// T translates a message key. Unknown languages fall back to Spanish and
// unknown keys fall back to the key itself.
func T(lang, key string) string {
	bundle, ok := messages[lang]
	if !ok {
		bundle = messages[defaultLang]
	}
	if msg, ok := bundle[key]; ok {
		return msg
	}
	if msg, ok := messages[defaultLang][key]; ok {
		return msg
	}
	return key
}
