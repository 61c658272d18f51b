// internal/assistant/tools.go
package assistant

// Tool describes one callable action the model may invoke. Parameters
// follow JSON Schema, which is what chat-completion APIs expect.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

func obj(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func num(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func integer(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func enum(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

// Tools is the assistant's full toolbox, addressed by name.
var Tools = []Tool{
	{
		Name:        "addProduct",
		Description: "Add a new product to the user's catalog",
		Parameters: obj(map[string]interface{}{
			"name":         str("Product name"),
			"description":  str("Product description"),
			"category":     str("Product category"),
			"sellingPrice": num("Selling price per unit"),
			"costPrice":    num("Cost price per unit"),
			"currentStock": integer("Initial stock on hand"),
			"minimumStock": integer("Stock level that triggers a low-stock warning"),
		}, "name", "sellingPrice"),
	},
	{
		Name:        "deleteProduct",
		Description: "Delete a product from the user's catalog by name",
		Parameters: obj(map[string]interface{}{
			"name": str("Product name"),
		}, "name"),
	},
	{
		Name:        "updateProduct",
		Description: "Update an existing product in the user's catalog by name",
		Parameters: obj(map[string]interface{}{
			"name":         str("Current product name"),
			"newName":      str("New product name"),
			"description":  str("Product description"),
			"category":     str("Product category"),
			"sellingPrice": num("Selling price per unit"),
			"costPrice":    num("Cost price per unit"),
			"minimumStock": integer("Minimum stock level"),
			"status":       enum("Product status", "active", "inactive", "discontinued"),
		}, "name"),
	},
	{
		Name:        "listProduct",
		Description: "List all products in the user's catalog",
		Parameters: obj(map[string]interface{}{
			"search":   str("Filter by name or description"),
			"lowStock": map[string]interface{}{"type": "boolean", "description": "Only products below minimum stock"},
		}),
	},
	{
		Name:        "getDailySales",
		Description: "Get today's sales and expenses",
		Parameters:  obj(map[string]interface{}{}),
	},
	{
		Name:        "getMonthlySales",
		Description: "Get the sales summary for a month, defaults to the current month",
		Parameters: obj(map[string]interface{}{
			"year":  integer("Year, e.g. 2026"),
			"month": integer("Month number 1-12"),
		}),
	},
	{
		Name:        "compareMonthlySales",
		Description: "Compare this month's sales with the previous month",
		Parameters:  obj(map[string]interface{}{}),
	},
	{
		Name:        "getTotalRevenue",
		Description: "Get total income up to today with a monthly breakdown",
		Parameters: obj(map[string]interface{}{
			"startDate": str("Start date in YYYY-MM-DD format"),
			"endDate":   str("End date in YYYY-MM-DD format, defaults to today"),
		}),
	},
	{
		Name:        "recordTransaction",
		Description: "Record a new income or expense. Use this for any sale, income, or expense.",
		Parameters: obj(map[string]interface{}{
			"type":            enum("Transaction type", "income", "expense"),
			"name":            str("Product name for sales, or a short label"),
			"amount":          num("Transaction amount, required when no catalog product matches"),
			"description":     str("Transaction description"),
			"quantity":        integer("Quantity of items sold"),
			"unitPrice":       num("Price per unit for items not in the catalog; matched products use their catalog price"),
			"expenseType":     enum("Expense category", "operating", "cogs", "capital", "other"),
			"transactionDate": str("Transaction date in YYYY-MM-DD format, defaults to today"),
			"notes":           str("Additional notes"),
		}, "type", "name"),
	},
	{
		Name:        "listTransaction",
		Description: "List recorded transactions with optional filtering",
		Parameters: obj(map[string]interface{}{
			"type":      enum("Filter by type", "income", "expense"),
			"startDate": str("Start date in YYYY-MM-DD format"),
			"endDate":   str("End date in YYYY-MM-DD format"),
			"limit":     integer("Maximum entries to return, defaults to 20"),
		}),
	},
	{
		Name:        "createPaymentLink",
		Description: "Create a payment link. For catalog products price and stock are resolved automatically; for general payments a price is required.",
		Parameters: obj(map[string]interface{}{
			"type":        enum("Payment kind", "product", "transaction"),
			"name":        str("Product name, or a payment description for general payments"),
			"price":       num("Price per unit, required for general payments"),
			"quantity":    integer("Quantity, defaults to 1"),
			"description": str("Additional description shown on the payment page"),
			"notes":       str("Additional notes"),
		}, "type", "name"),
	},
	{
		Name:        "checkPaymentStatus",
		Description: "Check the status of a payment link by its order ID",
		Parameters: obj(map[string]interface{}{
			"orderId": str("Order ID"),
		}, "orderId"),
	},
}

// ToolByName returns nil when the model asks for a tool we never offered.
func ToolByName(name string) *Tool {
	for i := range Tools {
		if Tools[i].Name == name {
			return &Tools[i]
		}
	}
	return nil
}
