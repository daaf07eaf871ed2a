/*
Package commerce is the retail storefront deployment variant.

Its snapshot holds the product catalog, the live cart and the last placed
order, kept in sync by three message kinds broadcast by the remote
authority: CATALOG_INIT, CART_UPDATE and ORDER_PLACED. Payloads are
decoded into typed structs and rejected when they fail validation, never
trusted by shape.
*/
package commerce
